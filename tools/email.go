// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"log/slog"
)

// EmailTool simulates delivering an email to a recipient supplied by the
// user. It never performs network I/O; the "delivery" is a structured log
// line plus a success payload for the model.
type EmailTool struct {
	logger *slog.Logger
}

var _ Tool = (*EmailTool)(nil)

// NewEmailTool creates the synthetic email tool. A nil logger falls back to
// slog.Default().
func NewEmailTool(logger *slog.Logger) *EmailTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailTool{logger: logger}
}

// Name returns the tool name.
func (t *EmailTool) Name() string { return "send_email" }

// Description returns the tool description offered to the model.
func (t *EmailTool) Description() string {
	return "Send an email to the given recipient. The recipient address must be supplied by the user."
}

// InputSchema returns the JSON schema of the tool arguments.
func (t *EmailTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to":      map[string]any{"type": "string", "description": "Recipient email address"},
			"subject": map[string]any{"type": "string", "description": "Email subject"},
			"body":    map[string]any{"type": "string", "description": "Email body"},
		},
		"required": []string{"to", "subject", "body"},
	}
}

// Execute simulates the send and reports success to the model.
func (t *EmailTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	to, _ := args["to"].(string)
	if to == "" {
		return "", fmt.Errorf("missing required argument: to")
	}
	subject, _ := args["subject"].(string)
	body, _ := args["body"].(string)

	preview := body
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	t.logger.Info("simulated email delivery",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", preview),
	)

	return fmt.Sprintf(`{"success": true, "message": "email delivered to %s"}`, to), nil
}
