package livestate

import "time"

// Worker is a transient background task an agent spawned for a
// channel, tracked with a status and its current tool.
type Worker struct {
	ID          string
	Task        string
	Status      string
	CurrentTool string
	ToolCalls   int
}

// Branch is a transient parallel reasoning sub-process, tracked with
// its start time so elapsed time can be shown.
type Branch struct {
	ID          string
	Description string
	StartedAt   time.Time
	CurrentTool string
	LastTool    string
	ToolCalls   int
}

// TimelineMessage is one entry in a channel's rolling message
// timeline.
type TimelineMessage struct {
	ID         string
	Role       string
	Content    string
	SenderName string
	CreatedAt  time.Time
}

// ChannelState is the live-state projection for one channel: what the
// dashboard shows about its current activity. Workers and branches are
// keyed by server-assigned IDs; the timeline is bounded to a retention
// window with oldest-first eviction.
type ChannelState struct {
	ChannelID string
	Typing    bool
	Workers   map[string]Worker
	Branches  map[string]Branch
	Timeline  []TimelineMessage
}

func newChannelState(channelID string) *ChannelState {
	return &ChannelState{
		ChannelID: channelID,
		Workers:   make(map[string]Worker),
		Branches:  make(map[string]Branch),
	}
}

// clone returns a deep copy safe to hand to readers.
func (c *ChannelState) clone() ChannelState {
	out := ChannelState{
		ChannelID: c.ChannelID,
		Typing:    c.Typing,
		Workers:   make(map[string]Worker, len(c.Workers)),
		Branches:  make(map[string]Branch, len(c.Branches)),
		Timeline:  append([]TimelineMessage(nil), c.Timeline...),
	}
	for id, w := range c.Workers {
		out.Workers[id] = w
	}
	for id, b := range c.Branches {
		out.Branches[id] = b
	}
	return out
}
