// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// JSON-RPC version used by the A2A protocol.
const JSONRPCVersion = "2.0"

// A2A RPC method names.
const (
	MethodMessageSend               = "message/send"
	MethodMessageStream             = "message/stream"
	MethodTasksGet                  = "tasks/get"
	MethodTasksCancel               = "tasks/cancel"
	MethodPushNotificationConfigSet = "tasks/pushNotificationConfig/set"
	MethodPushNotificationConfigGet = "tasks/pushNotificationConfig/get"
)

// Request is a JSON-RPC 2.0 request envelope. Params is retained raw so the
// handler can decode it against the method-specific parameter type.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      string         `json:"id"`
	Method  string         `json:"method"`
	Params  jsontext.Value `json:"params,omitzero"`
}

// Validate ensures the Request is a well-formed JSON-RPC 2.0 request.
func (r *Request) Validate() error {
	if r.JSONRPC != JSONRPCVersion {
		return fmt.Errorf("invalid jsonrpc version: %q", r.JSONRPC)
	}
	if r.Method == "" {
		return fmt.Errorf("request method cannot be empty")
	}
	return nil
}

// NewRequest creates a JSON-RPC request with marshaled params.
func NewRequest(id, method string, params any) (*Request, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s params: %w", method, err)
	}
	return &Request{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  raw,
	}, nil
}

// Response is a JSON-RPC 2.0 response envelope. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      string         `json:"id"`
	Result  jsontext.Value `json:"result,omitzero"`
	Error   *Error         `json:"error,omitzero"`
}

// NewResponse creates a success response with a marshaled result.
func NewResponse(id string, result any) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: raw}, nil
}

// NewErrorResponse creates an error response. Arbitrary errors degrade to
// InternalError so no raw error text leaks protocol-unaware shapes.
func NewErrorResponse(id string, err error) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: AsError(err)}
}

// MessageSendConfiguration carries per-request delivery options.
type MessageSendConfiguration struct {
	AcceptedOutputModes    []string                `json:"acceptedOutputModes,omitzero"`
	PushNotificationConfig *PushNotificationConfig `json:"pushNotificationConfig,omitzero"`
	HistoryLength          int                     `json:"historyLength,omitzero"`
	Blocking               bool                    `json:"blocking,omitzero"`
}

// MessageSendParams are the parameters of message/send and message/stream.
type MessageSendParams struct {
	Message       *Message                  `json:"message"`
	Configuration *MessageSendConfiguration `json:"configuration,omitzero"`
	Metadata      map[string]any            `json:"metadata,omitzero"`
}

// Validate ensures the MessageSendParams are valid.
func (p *MessageSendParams) Validate() error {
	if p.Message == nil {
		return fmt.Errorf("message cannot be nil")
	}
	if err := p.Message.Validate(); err != nil {
		return fmt.Errorf("message: %w", err)
	}
	if p.Configuration != nil && p.Configuration.PushNotificationConfig != nil {
		if err := p.Configuration.PushNotificationConfig.Validate(); err != nil {
			return fmt.Errorf("push notification config: %w", err)
		}
	}
	return nil
}

// TaskQueryParams are the parameters of tasks/get.
type TaskQueryParams struct {
	ID            string `json:"id"`
	HistoryLength int    `json:"historyLength,omitzero"`
}

// Validate ensures the TaskQueryParams are valid.
func (p *TaskQueryParams) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	return nil
}

// TaskIDParams are the parameters of tasks/cancel and
// tasks/pushNotificationConfig/get.
type TaskIDParams struct {
	ID string `json:"id"`
}

// Validate ensures the TaskIDParams are valid.
func (p *TaskIDParams) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	return nil
}
