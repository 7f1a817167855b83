package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/the-snesler/spacebot-sub001/pkg/sse"
)

// ToolActivity records one tool invocation observed during a chat
// turn. The list is scoped to the active turn, not retained history.
type ToolActivity struct {
	Tool          string
	Status        ToolStatus
	ResultPreview string
}

// ToolStatus is the lifecycle state of a tool invocation.
type ToolStatus string

const (
	ToolRunning ToolStatus = "running"
	ToolDone    ToolStatus = "done"
)

// Streamer posts one chat message and returns the streaming response
// body for the turn. Satisfied by api.Client.
type Streamer interface {
	PostChatMessage(ctx context.Context, sessionID, content string) (io.ReadCloser, error)
}

// Session drives request/response chat turns against one backend chat
// session. At most one turn is in flight at a time; a Send while
// streaming is a no-op. All exported accessors return snapshots safe
// to use from other goroutines.
type Session struct {
	client    Streamer
	sessionID string

	mu        sync.Mutex
	messages  []Message
	streaming bool
	lastErr   error
	tools     []ToolActivity
	onUpdate  func()
}

// NewSession creates a session bound to one backend chat session ID.
func NewSession(client Streamer, sessionID string) *Session {
	return &Session{client: client, sessionID: sessionID}
}

// OnUpdate registers a callback invoked after every observable change:
// message upserts, tool activity, streaming and error transitions.
func (s *Session) OnUpdate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Messages returns a copy of the visible message list.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// IsStreaming reports whether a turn is in flight.
func (s *Session) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// Err returns the error of the most recent turn, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ToolActivity returns a copy of the active turn's tool activity.
func (s *Session) ToolActivity() []ToolActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ToolActivity(nil), s.tools...)
}

// LoadHistory seeds the message list, typically from the backend's
// stored chat history on startup.
func (s *Session) LoadHistory(history []Message) {
	s.mu.Lock()
	s.messages = append([]Message(nil), history...)
	s.mu.Unlock()
	s.notify()
}

// Send runs one chat turn to completion: it echoes the user message
// into the list immediately, posts the request, folds the streamed
// frames into a single growing assistant message and resolves the turn
// on a terminal frame. Partial assistant output stays visible when the
// turn fails; it reflects real output the server produced.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.streaming {
		s.mu.Unlock()
		return nil
	}
	s.streaming = true
	s.lastErr = nil
	s.tools = nil
	s.messages = append(s.messages, NewUserMessage(text))
	s.mu.Unlock()
	s.notify()

	err := s.runTurn(ctx, text)

	s.mu.Lock()
	s.streaming = false
	s.tools = nil
	s.lastErr = err
	s.mu.Unlock()
	s.notify()
	return err
}

func (s *Session) runTurn(ctx context.Context, text string) error {
	body, err := s.client.PostChatMessage(ctx, s.sessionID, text)
	if err != nil {
		return err
	}
	defer body.Close()

	acc := NewTurnAccumulator(uuid.NewString())
	dec := sse.NewDecoder(body)
	resolved := false
	var turnErr error

	for {
		frame, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			turnErr = fmt.Errorf("stream reading error: %w", err)
			break
		}

		done, err := s.handleFrame(acc, frame)
		if err != nil {
			turnErr = err
			resolved = true
			break
		}
		if done {
			resolved = true
			break
		}
	}

	if !resolved && turnErr == nil {
		// The connection dropped mid-turn: a request failure, not a
		// partial success.
		turnErr = errors.New("stream ended before the turn completed")
	}
	return turnErr
}

// handleFrame applies one streamed frame. It returns done=true when
// the frame resolved the turn, and a non-nil error only for terminal
// failures; malformed payloads on non-terminal frames are swallowed so
// the turn continues.
func (s *Session) handleFrame(acc *TurnAccumulator, frame sse.Frame) (bool, error) {
	switch frame.Event {
	case "tool_started":
		var payload struct {
			Tool string `json:"tool"`
		}
		if json.Unmarshal([]byte(frame.Raw), &payload) != nil || payload.Tool == "" {
			return false, nil
		}
		s.mu.Lock()
		s.tools = append(s.tools, ToolActivity{Tool: payload.Tool, Status: ToolRunning})
		s.mu.Unlock()
		s.notify()

	case "tool_completed":
		var payload struct {
			Tool          string `json:"tool"`
			ResultPreview string `json:"result_preview"`
		}
		if json.Unmarshal([]byte(frame.Raw), &payload) != nil || payload.Tool == "" {
			return false, nil
		}
		s.completeTool(payload.Tool, payload.ResultPreview)

	case "text":
		var payload struct {
			Text string `json:"Text"`
		}
		if json.Unmarshal([]byte(frame.Raw), &payload) != nil {
			return false, nil
		}
		acc.Replace(payload.Text)
		s.upsertAssistant(acc)

	case "stream_chunk":
		var payload struct {
			StreamChunk string `json:"StreamChunk"`
		}
		if json.Unmarshal([]byte(frame.Raw), &payload) != nil {
			return false, nil
		}
		acc.Append(payload.StreamChunk)
		s.upsertAssistant(acc)

	case "done":
		var payload struct {
			Text string `json:"Text"`
		}
		if err := json.Unmarshal([]byte(frame.Raw), &payload); err != nil {
			return false, fmt.Errorf("failed to parse terminal frame: %w", err)
		}
		acc.Finalize(payload.Text)
		s.upsertAssistant(acc)
		return true, nil

	case "error":
		var payload struct {
			Error   string `json:"Error"`
			Message string `json:"message"`
		}
		message := frame.Raw
		if json.Unmarshal([]byte(frame.Raw), &payload) == nil {
			if payload.Error != "" {
				message = payload.Error
			} else if payload.Message != "" {
				message = payload.Message
			}
		}
		return false, errors.New(message)
	}

	// Unrecognized event types are dropped for forward compatibility.
	return false, nil
}

// completeTool flips the most recent running entry for the tool to
// done, attaching the result preview if present.
func (s *Session) completeTool(tool, preview string) {
	s.mu.Lock()
	for i := len(s.tools) - 1; i >= 0; i-- {
		if s.tools[i].Tool == tool && s.tools[i].Status == ToolRunning {
			s.tools[i].Status = ToolDone
			s.tools[i].ResultPreview = preview
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// upsertAssistant publishes the accumulator's current content under
// its placeholder message ID, updating in place after the first push.
func (s *Session) upsertAssistant(acc *TurnAccumulator) {
	s.mu.Lock()
	updated := false
	for i := range s.messages {
		if s.messages[i].ID == acc.MessageID {
			s.messages[i].Content = acc.Content()
			updated = true
			break
		}
	}
	if !updated {
		msg := NewAssistantMessage(acc.Content())
		msg.ID = acc.MessageID
		s.messages = append(s.messages, msg)
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onUpdate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
