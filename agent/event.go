// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import "fmt"

// EventKind classifies one reasoning step of the agent. The set is closed:
// the kind is decided once at the reasoning-loop boundary and consumers
// switch on it without re-inspecting the step that produced it.
type EventKind string

// Event kinds.
const (
	// EventWorking signals a tool being invoked or its result being processed.
	EventWorking EventKind = "working"
	// EventInputRequired signals the model asked the user for more information.
	EventInputRequired EventKind = "input-required"
	// EventCompleted signals a final natural-language answer.
	EventCompleted EventKind = "completed"
	// EventFailed signals an error during the step. It is always the last
	// event of a stream.
	EventFailed EventKind = "failed"
)

// Event is the agent's classification of one reasoning step. Events are
// ephemeral: produced once, consumed once, never persisted.
type Event struct {
	Kind    EventKind
	Content string
}

// String returns a string representation of the Event.
func (e Event) String() string {
	return fmt.Sprintf("Event{Kind: %s, Content: %.50s}", e.Kind, e.Content)
}
