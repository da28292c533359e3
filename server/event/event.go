// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package event provides the event queue connecting agent execution to the
// protocol layer. Executors publish task lifecycle events; the request
// handler consumes them in order and applies them to the stored task.
package event

import "github.com/go-a2a/searchagent/a2a"

// Event is one task lifecycle event flowing through a queue. The concrete
// types are the protocol objects themselves: *a2a.Task (task registration),
// *a2a.TaskStatusUpdateEvent and *a2a.TaskArtifactUpdateEvent.
type Event interface {
	Validate() error
}

var (
	_ Event = (*a2a.Task)(nil)
	_ Event = (*a2a.TaskStatusUpdateEvent)(nil)
	_ Event = (*a2a.TaskArtifactUpdateEvent)(nil)
)

// IsFinal reports whether an event terminates its stream: a status update
// marked final, or a task already in a terminal state.
func IsFinal(e Event) bool {
	switch e := e.(type) {
	case *a2a.TaskStatusUpdateEvent:
		return e.Final
	case *a2a.Task:
		return a2a.IsTerminalTaskState(e.Status.State)
	default:
		return false
	}
}
