// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm abstracts the language-model backend driving the agent's
// reasoning loop.
package llm

import "context"

// Client is the interface to a chat-completion language model with tool
// calling. One call corresponds to one reasoning step.
type Client interface {
	Chat(ctx context.Context, system string, messages []Message, tools []ToolDef) (*Message, error)
}

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitzero"`
}

// Message is one turn in a model conversation. Assistant messages may carry
// tool calls; tool messages carry the result of exactly one call, identified
// by ToolCallID.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"toolCalls,omitzero"`
	ToolCallID string     `json:"toolCallId,omitzero"`
}

// ToolDef describes a callable tool offered to the model.
type ToolDef struct {
	Name        string
	Description string
	InputSchema map[string]any
}
