// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package client is the A2A client: agent card discovery, blocking and
// streaming message delivery, task queries and push notification
// registration, plus the multi-turn interaction loop.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/go-a2a/searchagent/a2a"
)

// Client talks to one A2A agent endpoint over JSON-RPC.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the agent at the given base URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("agent endpoint cannot be empty")
	}
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		// No overall timeout: message/stream connections stay open for the
		// lifetime of the task.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchAgentCard retrieves the agent's capability descriptor from the
// well-known discovery path.
func (c *Client) FetchAgentCard(ctx context.Context) (*a2a.AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/.well-known/agent.json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching agent card: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching agent card: status %d", resp.StatusCode)
	}
	var card a2a.AgentCard
	if err := json.UnmarshalRead(resp.Body, &card); err != nil {
		return nil, fmt.Errorf("decoding agent card: %w", err)
	}
	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent card: %w", err)
	}
	return &card, nil
}

// SendMessage delivers a message with message/send and returns the final
// task snapshot.
func (c *Client) SendMessage(ctx context.Context, params *a2a.MessageSendParams) (*a2a.Task, error) {
	resp, err := c.call(ctx, a2a.MethodMessageSend, params)
	if err != nil {
		return nil, err
	}
	var task a2a.Task
	if err := json.Unmarshal(resp.Result, &task); err != nil {
		return nil, fmt.Errorf("decoding task result: %w", err)
	}
	return &task, nil
}

// GetTask retrieves a task snapshot with tasks/get.
func (c *Client) GetTask(ctx context.Context, params *a2a.TaskQueryParams) (*a2a.Task, error) {
	resp, err := c.call(ctx, a2a.MethodTasksGet, params)
	if err != nil {
		return nil, err
	}
	var task a2a.Task
	if err := json.Unmarshal(resp.Result, &task); err != nil {
		return nil, fmt.Errorf("decoding task result: %w", err)
	}
	return &task, nil
}

// CancelTask requests cancellation with tasks/cancel. The search agent
// always refuses with an UnsupportedOperation error.
func (c *Client) CancelTask(ctx context.Context, taskID string) (*a2a.Task, error) {
	resp, err := c.call(ctx, a2a.MethodTasksCancel, &a2a.TaskIDParams{ID: taskID})
	if err != nil {
		return nil, err
	}
	var task a2a.Task
	if err := json.Unmarshal(resp.Result, &task); err != nil {
		return nil, fmt.Errorf("decoding task result: %w", err)
	}
	return &task, nil
}

// SetPushNotificationConfig registers a push endpoint for a task.
func (c *Client) SetPushNotificationConfig(ctx context.Context, config *a2a.TaskPushNotificationConfig) (*a2a.TaskPushNotificationConfig, error) {
	resp, err := c.call(ctx, a2a.MethodPushNotificationConfigSet, config)
	if err != nil {
		return nil, err
	}
	var out a2a.TaskPushNotificationConfig
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return nil, fmt.Errorf("decoding push config result: %w", err)
	}
	return &out, nil
}

// GetPushNotificationConfig retrieves the registered push endpoint for a
// task.
func (c *Client) GetPushNotificationConfig(ctx context.Context, taskID string) (*a2a.TaskPushNotificationConfig, error) {
	resp, err := c.call(ctx, a2a.MethodPushNotificationConfigGet, &a2a.TaskIDParams{ID: taskID})
	if err != nil {
		return nil, err
	}
	var out a2a.TaskPushNotificationConfig
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return nil, fmt.Errorf("decoding push config result: %w", err)
	}
	return &out, nil
}

// call performs one blocking JSON-RPC round trip.
func (c *Client) call(ctx context.Context, method string, params any) (*a2a.Response, error) {
	req, err := a2a.NewRequest(uuid.NewString(), method, params)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("calling %s: status %d: %s", method, httpResp.StatusCode, data)
	}

	var resp a2a.Response
	if err := json.UnmarshalRead(httpResp.Body, &resp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &resp, nil
}

// NewMessageSendParams builds send params for a user text message bound to
// an existing task and context, when IDs are provided.
func NewMessageSendParams(text, contextID, taskID string, pushConfig *a2a.PushNotificationConfig) *a2a.MessageSendParams {
	msg := a2a.NewUserTextMessage(text, contextID, taskID)
	params := &a2a.MessageSendParams{Message: msg}
	if pushConfig != nil {
		params.Configuration = &a2a.MessageSendConfiguration{
			AcceptedOutputModes:    []string{"text"},
			PushNotificationConfig: pushConfig,
		}
	}
	return params
}

// defaultStreamTimeout bounds how long a single streaming turn may run.
const defaultStreamTimeout = 5 * time.Minute
