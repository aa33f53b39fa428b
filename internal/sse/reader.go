// Package sse reads server-sent-event frames off a response body.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// Frame is one framed text event.
type Frame struct {
	Event string
	Data  string
	ID    string
}

// Reader decodes frames from a stream. It understands the data/event/id
// fields and comment lines; unknown fields are skipped.
type Reader struct {
	scanner *bufio.Scanner
}

// maxLineSize bounds a single event line (1 MiB).
const maxLineSize = 1024 * 1024

// NewReader wraps a stream body.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	return &Reader{scanner: scanner}
}

// Next returns the next frame, or io.EOF when the stream ends. Multi-line
// data fields are joined with newlines per the SSE wire format.
func (r *Reader) Next() (*Frame, error) {
	frame := &Frame{}

	var (
		data []string
		seen bool
	)

	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if seen {
				frame.Data = strings.Join(data, "\n")

				return frame, nil
			}

			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "data":
			data = append(data, value)
			seen = true
		case "event":
			frame.Event = value
			seen = true
		case "id":
			frame.ID = value
			seen = true
		}
	}

	err := r.scanner.Err()
	if err != nil {
		return nil, err
	}

	if seen {
		frame.Data = strings.Join(data, "\n")

		return frame, nil
	}

	return nil, io.EOF
}
