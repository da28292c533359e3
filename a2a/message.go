// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

// Valid message roles.
const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Part kinds.
const (
	PartKindText = "text"
	PartKindFile = "file"
	PartKindData = "data"
)

// FileWithBytes represents a file carried inline as base64-encoded bytes.
type FileWithBytes struct {
	Name     string `json:"name,omitzero"`
	MIMEType string `json:"mimeType,omitzero"`
	Bytes    string `json:"bytes"`
}

// Part is one content segment of a message or artifact. Exactly one of
// Text, File or Data is populated, selected by Kind.
type Part struct {
	Kind string         `json:"kind"`
	Text string         `json:"text,omitzero"`
	File *FileWithBytes `json:"file,omitzero"`
	Data map[string]any `json:"data,omitzero"`
}

// Validate ensures the Part is valid.
func (p Part) Validate() error {
	switch p.Kind {
	case PartKindText:
		if p.Text == "" {
			return fmt.Errorf("text part text cannot be empty")
		}
	case PartKindFile:
		if p.File == nil {
			return fmt.Errorf("file part file cannot be nil")
		}
	case PartKindData:
		if p.Data == nil {
			return fmt.Errorf("data part data cannot be nil")
		}
	default:
		return fmt.Errorf("invalid part kind: %q", p.Kind)
	}
	return nil
}

// NewTextPart creates a text Part.
func NewTextPart(text string) Part {
	return Part{Kind: PartKindText, Text: text}
}

// NewFilePart creates a file Part from inline bytes.
func NewFilePart(file *FileWithBytes) Part {
	return Part{Kind: PartKindFile, File: file}
}

// Message is one turn of communication between user and agent.
type Message struct {
	Kind      string         `json:"kind"` // always "message"
	MessageID string         `json:"messageId"`
	Role      Role           `json:"role"`
	Parts     []Part         `json:"parts"`
	ContextID string         `json:"contextId,omitzero"`
	TaskID    string         `json:"taskId,omitzero"`
	Metadata  map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the Message is valid.
func (m *Message) Validate() error {
	if m.MessageID == "" {
		return fmt.Errorf("message ID cannot be empty")
	}
	if m.Role != RoleUser && m.Role != RoleAgent {
		return fmt.Errorf("invalid message role: %q", m.Role)
	}
	if len(m.Parts) == 0 {
		return fmt.Errorf("message must have at least one part")
	}
	for i, part := range m.Parts {
		if err := part.Validate(); err != nil {
			return fmt.Errorf("message part #%d: %w", i, err)
		}
	}
	return nil
}

// NewAgentTextMessage creates an agent-authored text message bound to the
// given context and task identifiers.
func NewAgentTextMessage(text, contextID, taskID string) *Message {
	return &Message{
		Kind:      KindMessage,
		MessageID: uuid.NewString(),
		Role:      RoleAgent,
		Parts:     []Part{NewTextPart(text)},
		ContextID: contextID,
		TaskID:    taskID,
	}
}

// NewUserTextMessage creates a user-authored text message. Empty contextID or
// taskID leave the corresponding field unset so the server can mint them.
func NewUserTextMessage(text, contextID, taskID string) *Message {
	return &Message{
		Kind:      KindMessage,
		MessageID: uuid.NewString(),
		Role:      RoleUser,
		Parts:     []Part{NewTextPart(text)},
		ContextID: contextID,
		TaskID:    taskID,
	}
}

// MessageText concatenates the text parts of a message with newlines.
func MessageText(m *Message) string {
	if m == nil {
		return ""
	}
	var texts []string
	for _, part := range m.Parts {
		if part.Kind == PartKindText {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}
