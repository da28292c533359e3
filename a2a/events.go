// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/go-json-experiment/json"
)

// Kind discriminators for streaming results. Every object that can appear as
// the result of a streaming response carries one of these in its "kind" field.
const (
	KindTask           = "task"
	KindMessage        = "message"
	KindStatusUpdate   = "status-update"
	KindArtifactUpdate = "artifact-update"
)

// TaskStatusUpdateEvent announces one task status transition on a stream.
type TaskStatusUpdateEvent struct {
	Kind      string         `json:"kind"` // always "status-update"
	TaskID    string         `json:"taskId"`
	ContextID string         `json:"contextId,omitzero"`
	Status    TaskStatus     `json:"status"`
	Final     bool           `json:"final"`
	Metadata  map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the TaskStatusUpdateEvent is valid.
func (e *TaskStatusUpdateEvent) Validate() error {
	if e.TaskID == "" {
		return fmt.Errorf("status update event task ID cannot be empty")
	}
	return e.Status.Validate()
}

// NewTaskStatusUpdateEvent creates a status update event for a task.
func NewTaskStatusUpdateEvent(taskID, contextID string, status TaskStatus, final bool) *TaskStatusUpdateEvent {
	return &TaskStatusUpdateEvent{
		Kind:      KindStatusUpdate,
		TaskID:    taskID,
		ContextID: contextID,
		Status:    status,
		Final:     final,
	}
}

// TaskArtifactUpdateEvent announces an artifact attached to a task on a stream.
type TaskArtifactUpdateEvent struct {
	Kind      string    `json:"kind"` // always "artifact-update"
	TaskID    string    `json:"taskId"`
	ContextID string    `json:"contextId,omitzero"`
	Artifact  *Artifact `json:"artifact"`
	Append    bool      `json:"append,omitzero"`
	LastChunk bool      `json:"lastChunk,omitzero"`
}

// Validate ensures the TaskArtifactUpdateEvent is valid.
func (e *TaskArtifactUpdateEvent) Validate() error {
	if e.TaskID == "" {
		return fmt.Errorf("artifact update event task ID cannot be empty")
	}
	if e.Artifact == nil {
		return fmt.Errorf("artifact update event artifact cannot be nil")
	}
	return e.Artifact.Validate()
}

// NewTaskArtifactUpdateEvent creates an artifact update event for a task.
func NewTaskArtifactUpdateEvent(taskID, contextID string, artifact *Artifact) *TaskArtifactUpdateEvent {
	return &TaskArtifactUpdateEvent{
		Kind:      KindArtifactUpdate,
		TaskID:    taskID,
		ContextID: contextID,
		Artifact:  artifact,
	}
}

// StreamResult is the closed union of objects that may appear as the result
// of a message/send or message/stream response. Exactly one field is non-nil.
type StreamResult struct {
	Task           *Task
	Message        *Message
	StatusUpdate   *TaskStatusUpdateEvent
	ArtifactUpdate *TaskArtifactUpdateEvent
}

// UnmarshalStreamResult decodes raw JSON into the stream result union by
// inspecting the "kind" discriminator. The decision is made once here;
// callers switch on the populated field and never re-probe the payload.
func UnmarshalStreamResult(data []byte) (*StreamResult, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("probing result kind: %w", err)
	}

	result := &StreamResult{}
	switch probe.Kind {
	case KindTask:
		result.Task = new(Task)
		if err := json.Unmarshal(data, result.Task); err != nil {
			return nil, fmt.Errorf("unmarshaling task result: %w", err)
		}
	case KindMessage:
		result.Message = new(Message)
		if err := json.Unmarshal(data, result.Message); err != nil {
			return nil, fmt.Errorf("unmarshaling message result: %w", err)
		}
	case KindStatusUpdate:
		result.StatusUpdate = new(TaskStatusUpdateEvent)
		if err := json.Unmarshal(data, result.StatusUpdate); err != nil {
			return nil, fmt.Errorf("unmarshaling status update result: %w", err)
		}
	case KindArtifactUpdate:
		result.ArtifactUpdate = new(TaskArtifactUpdateEvent)
		if err := json.Unmarshal(data, result.ArtifactUpdate); err != nil {
			return nil, fmt.Errorf("unmarshaling artifact update result: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown result kind: %q", probe.Kind)
	}
	return result, nil
}
