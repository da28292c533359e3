// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-a2a/searchagent/a2a"
	"github.com/go-a2a/searchagent/server/event"
)

// TaskUpdater publishes status and artifact updates for one task onto an
// event queue. It enforces the terminal-once invariant: after a final
// update no further mutation is permitted.
type TaskUpdater struct {
	taskID    string
	contextID string
	queue     *event.Queue

	mu       sync.Mutex
	terminal bool
}

// NewTaskUpdater creates an updater bound to the given task and queue.
func NewTaskUpdater(queue *event.Queue, taskID, contextID string) (*TaskUpdater, error) {
	if queue == nil {
		return nil, fmt.Errorf("event queue cannot be nil")
	}
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}
	if contextID == "" {
		return nil, fmt.Errorf("context ID cannot be empty")
	}
	return &TaskUpdater{taskID: taskID, contextID: contextID, queue: queue}, nil
}

// UpdateStatus publishes a status update. A final update, or any terminal
// state, marks the updater terminal.
func (u *TaskUpdater) UpdateStatus(ctx context.Context, state a2a.TaskState, message *a2a.Message, final bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.terminal {
		return fmt.Errorf("cannot update task %s in terminal state", u.taskID)
	}
	if final || a2a.IsTerminalTaskState(state) {
		u.terminal = true
		final = true
	}

	statusEvent := a2a.NewTaskStatusUpdateEvent(u.taskID, u.contextID, a2a.NewTaskStatus(state, message), final)
	if err := u.queue.Enqueue(ctx, statusEvent); err != nil {
		return fmt.Errorf("publishing status update: %w", err)
	}
	return nil
}

// AddArtifact publishes an artifact update.
func (u *TaskUpdater) AddArtifact(ctx context.Context, artifact *a2a.Artifact) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.terminal {
		return fmt.Errorf("cannot add artifact to task %s in terminal state", u.taskID)
	}
	if artifact == nil {
		return fmt.Errorf("artifact cannot be nil")
	}
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("invalid artifact: %w", err)
	}

	artifactEvent := a2a.NewTaskArtifactUpdateEvent(u.taskID, u.contextID, artifact)
	if err := u.queue.Enqueue(ctx, artifactEvent); err != nil {
		return fmt.Errorf("publishing artifact update: %w", err)
	}
	return nil
}

// StartWork marks the task as working with an agent message.
func (u *TaskUpdater) StartWork(ctx context.Context, message *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateWorking, message, false)
}

// RequiresInput marks the task as requiring more user input.
func (u *TaskUpdater) RequiresInput(ctx context.Context, message *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateInputRequired, message, false)
}

// Complete marks the task as completed. Terminal.
func (u *TaskUpdater) Complete(ctx context.Context, message *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateCompleted, message, true)
}

// Failed marks the task as failed. Terminal.
func (u *TaskUpdater) Failed(ctx context.Context, message *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateFailed, message, true)
}

// NewAgentMessage creates an agent text message bound to the updater's task.
func (u *TaskUpdater) NewAgentMessage(text string) *a2a.Message {
	return a2a.NewAgentTextMessage(text, u.contextID, u.taskID)
}

// IsTerminal reports whether a final update has been published.
func (u *TaskUpdater) IsTerminal() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.terminal
}
