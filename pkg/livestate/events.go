package livestate

import "time"

// Event types carried on the persistent activity stream, each keyed by
// the channel ID in its payload.
const (
	EventTypingStarted  = "typing_started"
	EventTypingStopped  = "typing_stopped"
	EventWorkerStarted  = "worker_started"
	EventWorkerUpdated  = "worker_updated"
	EventWorkerFinished = "worker_finished"
	EventWorkerKilled   = "worker_killed"
	EventBranchStarted  = "branch_started"
	EventBranchUpdated  = "branch_updated"
	EventBranchFinished = "branch_finished"
	EventBranchKilled   = "branch_killed"
	EventMessage        = "message_received"
)

// EventTypes lists every event type the projector consumes, in the
// form the stream connection expects for handler registration.
func EventTypes() []string {
	return []string{
		EventTypingStarted,
		EventTypingStopped,
		EventWorkerStarted,
		EventWorkerUpdated,
		EventWorkerFinished,
		EventWorkerKilled,
		EventBranchStarted,
		EventBranchUpdated,
		EventBranchFinished,
		EventBranchKilled,
		EventMessage,
	}
}

type typingPayload struct {
	ChannelID string `json:"channel_id"`
}

type workerPayload struct {
	ChannelID   string `json:"channel_id"`
	WorkerID    string `json:"worker_id"`
	Task        string `json:"task"`
	Status      string `json:"status"`
	CurrentTool string `json:"current_tool"`
	ToolCalls   int    `json:"tool_calls"`
}

type branchPayload struct {
	ChannelID   string    `json:"channel_id"`
	BranchID    string    `json:"branch_id"`
	Description string    `json:"description"`
	StartedAt   time.Time `json:"started_at"`
	CurrentTool string    `json:"current_tool"`
	LastTool    string    `json:"last_tool"`
	ToolCalls   int       `json:"tool_calls"`
}

type messagePayload struct {
	ChannelID  string    `json:"channel_id"`
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	SenderName string    `json:"sender_name"`
	CreatedAt  time.Time `json:"created_at"`
}
