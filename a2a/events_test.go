// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"testing"

	"github.com/go-json-experiment/json"
)

func TestUnmarshalStreamResult(t *testing.T) {
	tests := []struct {
		name  string
		value any
		check func(t *testing.T, result *StreamResult)
	}{
		{
			name: "task",
			value: &Task{
				Kind:      KindTask,
				ID:        "t1",
				ContextID: "c1",
				Status:    TaskStatus{State: TaskStateSubmitted},
			},
			check: func(t *testing.T, result *StreamResult) {
				if result.Task == nil || result.Task.ID != "t1" {
					t.Errorf("Task = %+v, want t1", result.Task)
				}
			},
		},
		{
			name:  "message",
			value: NewAgentTextMessage("hi", "c1", "t1"),
			check: func(t *testing.T, result *StreamResult) {
				if result.Message == nil || MessageText(result.Message) != "hi" {
					t.Errorf("Message = %+v, want text hi", result.Message)
				}
			},
		},
		{
			name: "status update",
			value: NewTaskStatusUpdateEvent("t1", "c1",
				NewTaskStatus(TaskStateWorking, nil), false),
			check: func(t *testing.T, result *StreamResult) {
				if result.StatusUpdate == nil || result.StatusUpdate.Status.State != TaskStateWorking {
					t.Errorf("StatusUpdate = %+v, want working", result.StatusUpdate)
				}
			},
		},
		{
			name: "artifact update",
			value: func() any {
				artifact, _ := NewTextArtifact("search_result", "answer")
				return NewTaskArtifactUpdateEvent("t1", "c1", artifact)
			}(),
			check: func(t *testing.T, result *StreamResult) {
				if result.ArtifactUpdate == nil || result.ArtifactUpdate.Artifact.Name != "search_result" {
					t.Errorf("ArtifactUpdate = %+v, want search_result", result.ArtifactUpdate)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("marshaling: %v", err)
			}
			result, err := UnmarshalStreamResult(data)
			if err != nil {
				t.Fatalf("UnmarshalStreamResult() error = %v", err)
			}
			tt.check(t, result)
		})
	}
}

func TestUnmarshalStreamResultUnknownKind(t *testing.T) {
	if _, err := UnmarshalStreamResult([]byte(`{"kind": "mystery"}`)); err == nil {
		t.Error("UnmarshalStreamResult() with unknown kind succeeded, want error")
	}
}

func TestStatusUpdateWireShape(t *testing.T) {
	ev := NewTaskStatusUpdateEvent("t1", "c1", NewTaskStatus(TaskStateCompleted, nil), true)
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshaling: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshaling: %v", err)
	}
	if raw["kind"] != "status-update" {
		t.Errorf("kind = %v, want status-update", raw["kind"])
	}
	if raw["taskId"] != "t1" || raw["contextId"] != "c1" {
		t.Errorf("ids = %v/%v, want camelCase taskId/contextId", raw["taskId"], raw["contextId"])
	}
	if raw["final"] != true {
		t.Errorf("final = %v, want true", raw["final"])
	}
}
