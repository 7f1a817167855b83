package cmd

import (
	"context"
	"time"

	"github.com/the-snesler/spacebot-sub001/pkg/api"
	"github.com/the-snesler/spacebot-sub001/pkg/chat"
	"github.com/the-snesler/spacebot-sub001/pkg/config"
	"github.com/the-snesler/spacebot-sub001/pkg/livestate"
	"github.com/the-snesler/spacebot-sub001/pkg/logger"
	"github.com/the-snesler/spacebot-sub001/pkg/stream"
	"github.com/the-snesler/spacebot-sub001/pkg/tui"
)

// runDashboard wires the whole client together and hands the terminal
// to the TUI until quit or signal.
func runDashboard(ctx context.Context) error {
	defer logger.Close()
	settings := config.Get()

	client := api.NewClient(settings.Server.URL, settings.Server.Token)
	projector := livestate.NewProjector(client,
		livestate.WithRetention(settings.Timeline.Retention))
	session := chat.NewSession(client, settings.Chat.SessionID)

	conn := stream.NewConnection(stream.Config{
		URL:            settings.Server.URL + "/api/live/events",
		Token:          settings.Server.Token,
		BackoffFloor:   time.Duration(settings.Stream.BackoffFloorSeconds) * time.Second,
		BackoffCeiling: time.Duration(settings.Stream.BackoffCeilingSeconds) * time.Second,
	})
	for _, event := range livestate.EventTypes() {
		conn.On(event, projector.Apply)
	}
	conn.OnReconnect(func() {
		if err := projector.Resync(ctx); err != nil {
			logger.Error("resync after reconnect failed: %v", err)
		}
	})

	// Seed state before the first frame arrives. Failures are
	// tolerated: the reconnect path resyncs once the backend is up.
	if err := projector.Resync(ctx); err != nil {
		logger.Warn("initial snapshot unavailable: %v", err)
	}
	if history, err := client.FetchChatHistory(ctx, settings.Chat.SessionID); err != nil {
		logger.Warn("chat history unavailable: %v", err)
	} else {
		session.LoadHistory(historyMessages(history))
	}

	conn.Open(ctx)
	defer conn.Close()

	app, err := tui.NewApp(conn, projector, session)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func historyMessages(history []api.MessageSnapshot) []chat.Message {
	messages := make([]chat.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, chat.Message{
			ID:         m.ID,
			Role:       m.Role,
			Content:    m.Content,
			SenderName: m.SenderName,
			CreatedAt:  m.CreatedAt,
		})
	}
	return messages
}
