// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-a2a/searchagent/a2a"
)

// TaskStore persists tasks between requests.
type TaskStore interface {
	// Save stores a task, overwriting any previous version.
	Save(ctx context.Context, task *a2a.Task) error

	// Get retrieves a task by ID. Returns a2a.ErrTaskNotFound when the task
	// does not exist.
	Get(ctx context.Context, taskID string) (*a2a.Task, error)

	// Delete removes a task. Deleting a missing task is not an error.
	Delete(ctx context.Context, taskID string) error
}

// InMemoryTaskStore is a TaskStore backed by a process-local map. Tasks are
// copied on the way in and out so callers cannot mutate stored state.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*a2a.Task
}

var _ TaskStore = (*InMemoryTaskStore)(nil)

// NewInMemoryTaskStore creates an empty in-memory task store.
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		tasks: make(map[string]*a2a.Task),
	}
}

// Save stores a copy of the task.
func (s *InMemoryTaskStore) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if task.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = copyTask(task)
	return nil
}

// Get returns a copy of the stored task.
func (s *InMemoryTaskStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, a2a.ErrTaskNotFound
	}
	return copyTask(task), nil
}

// Delete removes the task with the given ID.
func (s *InMemoryTaskStore) Delete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, taskID)
	return nil
}

// copyTask makes a shallow-safe copy: the slices are duplicated so appends
// through one reference do not leak into another. Messages and artifacts are
// treated as immutable once published.
func copyTask(task *a2a.Task) *a2a.Task {
	dup := *task
	if task.History != nil {
		dup.History = make([]*a2a.Message, len(task.History))
		copy(dup.History, task.History)
	}
	if task.Artifacts != nil {
		dup.Artifacts = make([]*a2a.Artifact, len(task.Artifacts))
		copy(dup.Artifacts, task.Artifacts)
	}
	return &dup
}
