package devserver

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/the-snesler/spacebot-sub001/pkg/logger"
)

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.scenario.Snapshot)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.scenario.History)
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.scenario.Channels)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.scenario.Agents)
}

// handleChatMessage streams the scripted frames for one chat turn.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	flusher, ok := beginEventStream(w)
	if !ok {
		return
	}

	turn := s.scenario.ChatTurn
	if turn == nil {
		turn = defaultChatTurn
	}
	for _, event := range turn(req.Content) {
		if !writeEvent(w, flusher, event) {
			return
		}
	}
}

// handleEvents serves the persistent activity stream. The script plays
// in order and loops; LagAfter cuts in with a lagged event so clients
// exercise their resync path.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := beginEventStream(w)
	if !ok {
		return
	}

	events := s.scenario.Events
	if len(events) == 0 {
		<-r.Context().Done()
		return
	}

	sent := 0
	for i := 0; ; i = (i + 1) % len(events) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.config.EventInterval):
		}

		if !writeEvent(w, flusher, events[i]) {
			return
		}
		sent++

		if s.scenario.LagAfter > 0 && sent%s.scenario.LagAfter == 0 {
			lag := Event{Type: "lagged", Data: map[string]any{"skipped": 7}}
			if !writeEvent(w, flusher, lag) {
				return
			}
		}
	}
}

func beginEventStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher, true
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event Event) bool {
	data, err := json.Marshal(event.Data)
	if err != nil {
		logger.Error("dropping unencodable %s event: %v", event.Type, err)
		return true
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return false
	}
	flusher.Flush()
	return true
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// bearerAuth validates Bearer token authentication.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
		if !constantTimeEqual(token, s.config.Token) {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func constantTimeEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
