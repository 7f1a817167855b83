package sse

import (
	"bufio"
	"io"
	"strings"
)

// Decoder reads event-stream frames from a byte stream. It implements
// the line framing shared by the persistent activity stream and the
// per-request chat stream: "event:" and "data:" lines accumulate into a
// pending frame, a blank line emits it. The decoder terminates cleanly
// when the underlying stream ends; it has no reconnect behavior.
type Decoder struct {
	scanner   *bufio.Scanner
	event     string
	dataLines []string
	err       error
}

// NewDecoder creates a decoder over r. The caller retains ownership of
// r and is responsible for closing it.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 2*1024*1024)
	return &Decoder{scanner: scanner}
}

// Next returns the next complete frame. It returns io.EOF when the
// stream has ended and all buffered frames have been drained.
func (d *Decoder) Next() (Frame, error) {
	if d.err != nil {
		return Frame{}, d.err
	}

	for d.scanner.Scan() {
		line := d.scanner.Text()

		if line == "" {
			if frame, ok := d.flush(); ok {
				return frame, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			// Comment line, used by servers as a keepalive.
			continue
		}
		if strings.HasPrefix(line, "event:") {
			d.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		}
		if strings.HasPrefix(line, "data:") {
			part := strings.TrimPrefix(line, "data:")
			part = strings.TrimPrefix(part, " ")
			d.dataLines = append(d.dataLines, part)
		}
	}

	if err := d.scanner.Err(); err != nil {
		d.err = err
		return Frame{}, err
	}

	// Stream ended without a trailing blank line: emit what is pending.
	if frame, ok := d.flush(); ok {
		return frame, nil
	}

	d.err = io.EOF
	return Frame{}, io.EOF
}

// Decode drains the stream, invoking onFrame for each complete frame.
// It returns nil at end of stream and the transport error otherwise.
func (d *Decoder) Decode(onFrame func(Frame)) error {
	for {
		frame, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		onFrame(frame)
	}
}

func (d *Decoder) flush() (Frame, bool) {
	if d.event == "" && len(d.dataLines) == 0 {
		return Frame{}, false
	}
	event := d.event
	if event == "" {
		event = "message"
	}
	frame := NewFrame(event, strings.Join(d.dataLines, "\n"))
	d.event = ""
	d.dataLines = nil
	return frame, true
}
