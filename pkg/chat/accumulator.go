package chat

import "strings"

// TurnAccumulator builds the single assistant message for one chat
// turn from streamed frames. The server pushes content two ways: full
// replacements ("text" frames) and incremental chunks ("stream_chunk"
// frames). Both target the same placeholder message ID so the visible
// message updates in place instead of duplicating.
//
// When the two kinds interleave within one turn, the full-state push
// wins: Replace resets the accumulator to the pushed content, and any
// later chunk appends to that state.
type TurnAccumulator struct {
	MessageID string
	content   strings.Builder
	finalized bool
}

// NewTurnAccumulator creates an accumulator bound to the placeholder
// message ID for this turn.
func NewTurnAccumulator(messageID string) *TurnAccumulator {
	return &TurnAccumulator{MessageID: messageID}
}

// Append adds an incremental chunk to the accumulated content.
func (a *TurnAccumulator) Append(chunk string) {
	a.content.WriteString(chunk)
}

// Replace discards accumulated content in favor of a full-state push.
func (a *TurnAccumulator) Replace(full string) {
	a.content.Reset()
	a.content.WriteString(full)
}

// Finalize applies the server-declared final text, which supersedes
// any accumulated partial content when non-empty, and marks the turn
// complete.
func (a *TurnAccumulator) Finalize(final string) {
	if final != "" {
		a.Replace(final)
	}
	a.finalized = true
}

// Content returns the current accumulated content.
func (a *TurnAccumulator) Content() string {
	return a.content.String()
}

// IsFinalized reports whether the turn has been resolved.
func (a *TurnAccumulator) IsFinalized() bool {
	return a.finalized
}
