// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"

	"github.com/go-a2a/searchagent/a2a"
)

// RequestContext carries one inbound message/send or message/stream request
// into an executor: the validated parameters plus the current task, when the
// message continues an existing one.
type RequestContext struct {
	// Params are the inbound request parameters.
	Params *a2a.MessageSendParams

	// Task is the existing task the message continues, or nil for a fresh
	// request.
	Task *a2a.Task
}

// Validate checks the request before any task is created or mutated.
func (rc *RequestContext) Validate() error {
	if rc.Params == nil {
		return fmt.Errorf("request params cannot be nil")
	}
	if err := rc.Params.Validate(); err != nil {
		return err
	}
	if a2a.MessageText(rc.Params.Message) == "" {
		return fmt.Errorf("message has no text content")
	}
	if rc.Task != nil && rc.Task.IsTerminal() {
		return fmt.Errorf("task %s is already in terminal state %s", rc.Task.ID, rc.Task.Status.State)
	}
	return nil
}

// UserInput returns the text content of the inbound message.
func (rc *RequestContext) UserInput() string {
	if rc.Params == nil {
		return ""
	}
	return a2a.MessageText(rc.Params.Message)
}
