package devserver

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/the-snesler/spacebot-sub001/pkg/api"
)

// Event is one scripted entry on the persistent activity stream.
type Event struct {
	Type string
	Data any
}

// Scenario scripts everything the fake backend serves: the snapshot,
// chat history, the activity event loop, and the per-turn chat frames.
type Scenario struct {
	Snapshot api.LiveSnapshot
	History  []api.MessageSnapshot
	Channels []api.Channel
	Agents   []api.Agent

	// Events plays in order on /api/live/events, then loops.
	Events []Event

	// LagAfter injects a lagged event after that many scripted events
	// on each stream, exercising the client's resync path. Zero
	// disables it.
	LagAfter int

	// ChatTurn scripts the streaming frames for one chat turn. When
	// nil, a default echo turn is used.
	ChatTurn func(content string) []Event
}

// DemoScenario returns a scenario with enough activity to exercise
// every dashboard surface.
func DemoScenario() *Scenario {
	now := time.Now().UTC()
	channelID := "general"

	return &Scenario{
		Snapshot: api.LiveSnapshot{
			Channels: []api.ChannelSnapshot{{
				ChannelID: channelID,
				Workers: []api.WorkerSnapshot{{
					ID: "w-demo", Task: "summarize backlog", Status: "running", ToolCalls: 2,
				}},
				Timeline: []api.MessageSnapshot{{
					ID: "m-demo", Role: "assistant", Content: "On it.", CreatedAt: now,
				}},
			}},
		},
		History: []api.MessageSnapshot{
			{ID: "h1", Role: "user", Content: "hello", CreatedAt: now.Add(-time.Minute)},
			{ID: "h2", Role: "assistant", Content: "hi there", CreatedAt: now.Add(-50 * time.Second)},
		},
		Channels: []api.Channel{
			{ID: channelID, Name: "general", Platform: "discord"},
		},
		Agents: []api.Agent{
			{ID: "a1", Name: "spacebot", Status: "online"},
		},
		Events: []Event{
			{Type: "typing_started", Data: map[string]any{"channel_id": channelID}},
			{Type: "worker_updated", Data: map[string]any{
				"channel_id": channelID, "worker_id": "w-demo", "task": "summarize backlog",
				"status": "running", "current_tool": "search", "tool_calls": 3,
			}},
			{Type: "message_received", Data: map[string]any{
				"channel_id": channelID, "id": uuid.NewString(), "role": "assistant",
				"content": "Summary is coming together.", "created_at": now.Format(time.RFC3339),
			}},
			{Type: "typing_stopped", Data: map[string]any{"channel_id": channelID}},
			{Type: "branch_started", Data: map[string]any{
				"channel_id": channelID, "branch_id": "b-demo",
				"description": "compare approaches", "started_at": now.Format(time.RFC3339),
			}},
			{Type: "branch_finished", Data: map[string]any{
				"channel_id": channelID, "branch_id": "b-demo",
			}},
		},
	}
}

// defaultChatTurn scripts a turn that streams the reply in chunks
// around a tool call.
func defaultChatTurn(content string) []Event {
	reply := fmt.Sprintf("You said: %s", content)
	half := len(reply) / 2
	return []Event{
		{Type: "tool_started", Data: map[string]any{"tool": "search"}},
		{Type: "tool_completed", Data: map[string]any{"tool": "search", "result_preview": "3 hits"}},
		{Type: "stream_chunk", Data: map[string]any{"StreamChunk": reply[:half]}},
		{Type: "stream_chunk", Data: map[string]any{"StreamChunk": reply[half:]}},
		{Type: "done", Data: map[string]any{"Text": reply}},
	}
}
