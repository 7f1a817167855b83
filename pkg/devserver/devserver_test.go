package devserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-snesler/spacebot-sub001/pkg/api"
	"github.com/the-snesler/spacebot-sub001/pkg/chat"
	"github.com/the-snesler/spacebot-sub001/pkg/devserver"
	"github.com/the-snesler/spacebot-sub001/pkg/livestate"
	"github.com/the-snesler/spacebot-sub001/pkg/sse"
)

func newTestServer(t *testing.T, cfg devserver.Config, scenario *devserver.Scenario) (*httptest.Server, *api.Client) {
	t.Helper()
	ts := httptest.NewServer(devserver.New(cfg, scenario).Handler())
	t.Cleanup(ts.Close)
	return ts, api.NewClient(ts.URL, cfg.Token)
}

func TestProjectorResyncsFromSnapshotEndpoint(t *testing.T) {
	_, client := newTestServer(t, devserver.Config{}, nil)

	projector := livestate.NewProjector(client)
	require.NoError(t, projector.Resync(context.Background()))

	ch, ok := projector.Channel("general")
	require.True(t, ok)
	assert.Contains(t, ch.Workers, "w-demo")
	require.NotEmpty(t, ch.Timeline)
	assert.Equal(t, "m-demo", ch.Timeline[0].ID)
}

func TestChatTurnStreamsScriptedFrames(t *testing.T) {
	_, client := newTestServer(t, devserver.Config{}, nil)

	session := chat.NewSession(client, "web-1")
	require.NoError(t, session.Send(context.Background(), "hi"))

	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, chat.RoleUser, messages[0].Role)
	assert.Equal(t, chat.RoleAssistant, messages[1].Role)
	assert.Equal(t, "You said: hi", messages[1].Content)
}

func TestChatMessageRejectsEmptyContent(t *testing.T) {
	ts, _ := newTestServer(t, devserver.Config{}, nil)

	resp, err := http.Post(ts.URL+"/api/chat/web-1/messages", "application/json",
		strings.NewReader(`{"content":"  "}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEventStreamInjectsLag(t *testing.T) {
	scenario := devserver.DemoScenario()
	scenario.LagAfter = 2
	ts, _ := newTestServer(t, devserver.Config{EventInterval: time.Millisecond}, scenario)

	resp, err := http.Get(ts.URL + "/api/live/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	decoder := sse.NewDecoder(resp.Body)
	var events []string
	for len(events) < 3 {
		frame, err := decoder.Next()
		require.NoError(t, err)
		events = append(events, frame.Event)
	}

	assert.Equal(t, "typing_started", events[0])
	assert.Equal(t, "worker_updated", events[1])
	assert.Equal(t, "lagged", events[2])
}

func TestBearerAuthGuardsAllRoutes(t *testing.T) {
	ts, client := newTestServer(t, devserver.Config{Token: "sekret"}, nil)

	resp, err := http.Get(ts.URL + "/api/channels")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	channels, err := client.ListChannels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "general", channels[0].ID)
}

func TestHistoryAndAgentsEndpoints(t *testing.T) {
	_, client := newTestServer(t, devserver.Config{}, nil)
	ctx := context.Background()

	history, err := client.FetchChatHistory(ctx, "web-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	agents, err := client.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "spacebot", agents[0].Name)
}
