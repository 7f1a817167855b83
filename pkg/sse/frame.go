package sse

import "encoding/json"

// Frame represents a single decoded event-stream unit.
type Frame struct {
	Event string // Event type from the "event:" field
	Data  any    // JSON-decoded payload, or the raw string when decoding fails
	Raw   string // Exact payload bytes as received
}

// NewFrame builds a frame from an event name and its raw payload. The
// payload is attempted as JSON; anything that does not parse (heartbeats,
// plain-text diagnostics) is carried through as the raw string.
func NewFrame(event, raw string) Frame {
	return Frame{
		Event: event,
		Data:  decodePayload(raw),
		Raw:   raw,
	}
}

// Object returns the payload as a JSON object, if it is one.
func (f Frame) Object() (map[string]any, bool) {
	obj, ok := f.Data.(map[string]any)
	return obj, ok
}

func decodePayload(raw string) any {
	if raw == "" {
		return ""
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}
