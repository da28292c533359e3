// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"testing"

	"github.com/go-a2a/searchagent/a2a"
	"github.com/go-a2a/searchagent/server/event"
)

func newTestUpdater(t *testing.T) (*TaskUpdater, *event.Queue) {
	t.Helper()
	q := event.NewQueue(32)
	u, err := NewTaskUpdater(q, "task-1", "ctx-1")
	if err != nil {
		t.Fatalf("NewTaskUpdater() error = %v", err)
	}
	return u, q
}

func TestTaskUpdaterLifecycle(t *testing.T) {
	u, q := newTestUpdater(t)

	if err := u.StartWork(t.Context(), u.NewAgentMessage("Calling tool [tavily_search]...")); err != nil {
		t.Fatalf("StartWork() error = %v", err)
	}
	if u.IsTerminal() {
		t.Error("IsTerminal() = true after non-final update")
	}
	if err := u.Complete(t.Context(), u.NewAgentMessage("Task completed")); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !u.IsTerminal() {
		t.Error("IsTerminal() = false after Complete")
	}

	ev, err := q.Dequeue(t.Context())
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	working := ev.(*a2a.TaskStatusUpdateEvent)
	if working.Status.State != a2a.TaskStateWorking || working.Final {
		t.Errorf("first update = %s final=%v, want non-final working", working.Status.State, working.Final)
	}

	ev, err = q.Dequeue(t.Context())
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	completed := ev.(*a2a.TaskStatusUpdateEvent)
	if completed.Status.State != a2a.TaskStateCompleted || !completed.Final {
		t.Errorf("second update = %s final=%v, want final completed", completed.Status.State, completed.Final)
	}
}

func TestTaskUpdaterRejectsAfterTerminal(t *testing.T) {
	u, _ := newTestUpdater(t)

	if err := u.Failed(t.Context(), u.NewAgentMessage("boom")); err != nil {
		t.Fatalf("Failed() error = %v", err)
	}

	if err := u.StartWork(t.Context(), u.NewAgentMessage("more work")); err == nil {
		t.Error("StartWork() after terminal state succeeded, want error")
	}
	artifact, err := a2a.NewTextArtifact("late", "too late")
	if err != nil {
		t.Fatalf("NewTextArtifact() error = %v", err)
	}
	if err := u.AddArtifact(t.Context(), artifact); err == nil {
		t.Error("AddArtifact() after terminal state succeeded, want error")
	}
	if err := u.Complete(t.Context(), nil); err == nil {
		t.Error("second terminal update succeeded, want error")
	}
}

// A terminal state always closes the updater even when final is not
// requested explicitly.
func TestTaskUpdaterTerminalStateImpliesFinal(t *testing.T) {
	u, q := newTestUpdater(t)

	if err := u.UpdateStatus(t.Context(), a2a.TaskStateCompleted, nil, false); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if !u.IsTerminal() {
		t.Error("IsTerminal() = false after completed state")
	}

	ev, err := q.Dequeue(t.Context())
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if update := ev.(*a2a.TaskStatusUpdateEvent); !update.Final {
		t.Error("update.Final = false, want true for a terminal state")
	}
}

func TestTaskUpdaterAgentMessageBinding(t *testing.T) {
	u, _ := newTestUpdater(t)
	msg := u.NewAgentMessage("hello")
	if msg.TaskID != "task-1" || msg.ContextID != "ctx-1" {
		t.Errorf("message bound to %s/%s, want task-1/ctx-1", msg.TaskID, msg.ContextID)
	}
	if msg.Role != a2a.RoleAgent {
		t.Errorf("message role = %s, want agent", msg.Role)
	}
}
