// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"sort"
	"sync"

	"github.com/go-a2a/searchagent/llm"
)

// CheckpointStore persists conversation turn history keyed by context ID.
// It is the only shared persistent resource of the agent core; all mutation
// goes through the reasoning loop or an explicit Clear.
type CheckpointStore interface {
	// Load returns the stored history for contextID. A context that never
	// existed yields an empty history, not an error.
	Load(ctx context.Context, contextID string) ([]llm.Message, error)

	// Save replaces the stored history for contextID.
	Save(ctx context.Context, contextID string, history []llm.Message) error

	// Clear removes the stored history for contextID. It is idempotent and
	// reports whether the context existed.
	Clear(ctx context.Context, contextID string) (bool, error)

	// Contexts enumerates all stored context IDs.
	Contexts(ctx context.Context) ([]string, error)
}

// MemorySaver is an in-process CheckpointStore. Retention is unbounded and
// nothing survives a process restart.
type MemorySaver struct {
	mu        sync.RWMutex
	histories map[string][]llm.Message
}

var _ CheckpointStore = (*MemorySaver)(nil)

// NewMemorySaver creates an empty in-memory checkpoint store.
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{histories: make(map[string][]llm.Message)}
}

// Load returns a copy of the stored history for contextID.
func (s *MemorySaver) Load(ctx context.Context, contextID string) ([]llm.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.histories[contextID]
	if !ok {
		return nil, nil
	}
	out := make([]llm.Message, len(history))
	copy(out, history)
	return out, nil
}

// Save replaces the stored history for contextID with a copy of history.
func (s *MemorySaver) Save(ctx context.Context, contextID string, history []llm.Message) error {
	stored := make([]llm.Message, len(history))
	copy(stored, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[contextID] = stored
	return nil
}

// Clear removes the stored history for contextID.
func (s *MemorySaver) Clear(ctx context.Context, contextID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.histories[contextID]
	delete(s.histories, contextID)
	return existed, nil
}

// Contexts returns all stored context IDs in sorted order.
func (s *MemorySaver) Contexts(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.histories))
	for id := range s.histories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
