package devserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/the-snesler/spacebot-sub001/pkg/logger"
)

// Config holds dev server configuration.
type Config struct {
	Listen string
	Token  string

	// EventInterval is the pause between scripted activity events.
	EventInterval time.Duration
}

// Server is a fake backend serving the dashboard's REST and streaming
// surface from a scripted scenario. It exists for local development
// and integration-style tests; nothing here persists.
type Server struct {
	config   Config
	scenario *Scenario
	server   *http.Server
}

// New creates a dev server around the given scenario. A nil scenario
// gets the default demo script.
func New(config Config, scenario *Scenario) *Server {
	if scenario == nil {
		scenario = DemoScenario()
	}
	if config.EventInterval <= 0 {
		config.EventInterval = 2 * time.Second
	}
	return &Server{config: config, scenario: scenario}
}

// Handler returns the routed handler, exposed for httptest use.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		if s.config.Token != "" {
			r.Use(s.bearerAuth)
		}
		r.Get("/live/snapshot", s.handleSnapshot)
		r.Get("/live/events", s.handleEvents)
		r.Get("/channels", s.handleChannels)
		r.Get("/agents", s.handleAgents)
		r.Get("/chat/{session_id}/history", s.handleHistory)
		r.Post("/chat/{session_id}/messages", s.handleChatMessage)
	})

	return r
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:        s.config.Listen,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		// SSE endpoints are long-lived streams.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("dev server listening on %s", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}
