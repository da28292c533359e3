// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"testing"

	"github.com/go-a2a/searchagent/a2a"
)

func TestIsFinal(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{
			name: "non-final status update",
			ev:   statusEvent("t1", a2a.TaskStateWorking, false),
			want: false,
		},
		{
			name: "final status update",
			ev:   statusEvent("t1", a2a.TaskStateCompleted, true),
			want: true,
		},
		{
			name: "submitted task",
			ev:   &a2a.Task{Status: a2a.TaskStatus{State: a2a.TaskStateSubmitted}},
			want: false,
		},
		{
			name: "failed task",
			ev:   &a2a.Task{Status: a2a.TaskStatus{State: a2a.TaskStateFailed}},
			want: true,
		},
		{
			name: "artifact update",
			ev:   &a2a.TaskArtifactUpdateEvent{Kind: a2a.KindArtifactUpdate},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinal(tt.ev); got != tt.want {
				t.Errorf("IsFinal() = %v, want %v", got, tt.want)
			}
		})
	}
}
