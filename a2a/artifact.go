// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/google/uuid"
)

// Artifact is a named, typed output attached to a task.
type Artifact struct {
	ArtifactID  string         `json:"artifactId"`
	Name        string         `json:"name,omitzero"`
	Description string         `json:"description,omitzero"`
	Parts       []Part         `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the Artifact is valid.
func (a *Artifact) Validate() error {
	if a.ArtifactID == "" {
		return fmt.Errorf("artifact ID cannot be empty")
	}
	if len(a.Parts) == 0 {
		return fmt.Errorf("artifact must have at least one part")
	}
	for i, part := range a.Parts {
		if err := part.Validate(); err != nil {
			return fmt.Errorf("artifact part #%d: %w", i, err)
		}
	}
	return nil
}

// NewArtifact creates an artifact with a fresh ID from the given parts.
func NewArtifact(name string, parts ...Part) (*Artifact, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("artifact must have at least one part")
	}
	artifact := &Artifact{
		ArtifactID: uuid.NewString(),
		Name:       name,
		Parts:      parts,
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return artifact, nil
}

// NewTextArtifact creates an artifact holding a single text part.
func NewTextArtifact(name, text string) (*Artifact, error) {
	return NewArtifact(name, NewTextPart(text))
}
