// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"testing"
	"time"
)

func TestNewTaskMintsIDs(t *testing.T) {
	msg := NewUserTextMessage("hello", "", "")
	task, err := NewTask(msg)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}

	if task.ID == "" || task.ContextID == "" {
		t.Errorf("task IDs = %q/%q, want minted UUIDs", task.ID, task.ContextID)
	}
	if task.Status.State != TaskStateSubmitted {
		t.Errorf("state = %s, want submitted", task.Status.State)
	}
	if len(task.History) != 1 || task.History[0] != msg {
		t.Error("inbound message is not the first history entry")
	}
	if _, err := time.Parse(time.RFC3339, task.Status.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", task.Status.Timestamp, err)
	}
}

func TestNewTaskAdoptsIDs(t *testing.T) {
	msg := NewUserTextMessage("hello", "ctx-9", "task-9")
	task, err := NewTask(msg)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.ID != "task-9" || task.ContextID != "ctx-9" {
		t.Errorf("task IDs = %q/%q, want adopted task-9/ctx-9", task.ID, task.ContextID)
	}
}

func TestNewTaskRejectsInvalidMessage(t *testing.T) {
	if _, err := NewTask(nil); err == nil {
		t.Error("NewTask(nil) succeeded, want error")
	}
	if _, err := NewTask(&Message{Kind: KindMessage}); err == nil {
		t.Error("NewTask() with empty message succeeded, want error")
	}
}

func TestTaskIsTerminal(t *testing.T) {
	tests := []struct {
		state TaskState
		want  bool
	}{
		{TaskStateSubmitted, false},
		{TaskStateWorking, false},
		{TaskStateInputRequired, false},
		{TaskStateCompleted, true},
		{TaskStateFailed, true},
		{TaskStateCanceled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			task := &Task{Status: TaskStatus{State: tt.state}}
			if got := task.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal(%s) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}
