package api

import "time"

// Channel is a conversational endpoint tracked by the dashboard: a
// platform channel or a web-chat session.
type Channel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

// Agent describes an agent configuration, consumed by presentation.
type Agent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// WorkerSnapshot is the authoritative state of one active worker.
type WorkerSnapshot struct {
	ID          string `json:"id"`
	Task        string `json:"task"`
	Status      string `json:"status"`
	CurrentTool string `json:"current_tool,omitempty"`
	ToolCalls   int    `json:"tool_calls"`
}

// BranchSnapshot is the authoritative state of one active branch.
type BranchSnapshot struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	StartedAt   time.Time `json:"started_at"`
	CurrentTool string    `json:"current_tool,omitempty"`
	LastTool    string    `json:"last_tool,omitempty"`
	ToolCalls   int       `json:"tool_calls"`
}

// MessageSnapshot is one timeline or history entry.
type MessageSnapshot struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	SenderName string    `json:"sender_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChannelSnapshot is the full authoritative live state of one channel.
type ChannelSnapshot struct {
	ChannelID string            `json:"channel_id"`
	Typing    bool              `json:"typing"`
	Workers   []WorkerSnapshot  `json:"workers"`
	Branches  []BranchSnapshot  `json:"branches"`
	Timeline  []MessageSnapshot `json:"timeline"`
}

// LiveSnapshot is the whole-dashboard snapshot used on initial load
// and on every resync.
type LiveSnapshot struct {
	Channels []ChannelSnapshot `json:"channels"`
}
