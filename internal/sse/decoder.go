// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package sse decodes Server-Sent Event streams.
package sse

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Event is one Server-Sent Event.
type Event struct {
	Type string
	Data string
	ID   string
}

// Decoder reads Server-Sent Events off a stream.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder creates a decoder over the reader.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	// Frames carry whole task snapshots; the default 64 KiB line limit is
	// too small.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Decoder{scanner: scanner}
}

// Decode returns the next event, or io.EOF when the stream ends.
func (d *Decoder) Decode() (*Event, error) {
	event := &Event{}

	for d.scanner.Scan() {
		line := d.scanner.Text()

		// Blank line terminates the event.
		if line == "" {
			if event.Data != "" || event.Type != "" {
				return event, nil
			}
			continue
		}
		// Comment lines.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			event.Type = value
		case "data":
			if event.Data != "" {
				event.Data += "\n"
			}
			event.Data += value
		case "id":
			event.ID = value
		}
	}

	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading event stream: %w", err)
	}
	if event.Data != "" || event.Type != "" {
		return event, nil
	}
	return nil, io.EOF
}
