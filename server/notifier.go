// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/go-a2a/searchagent/a2a"
)

// validationTokenParam is the query parameter used in the push endpoint
// ownership handshake.
const validationTokenParam = "validationToken"

// PushConfigStore keeps push notification configs per task.
type PushConfigStore interface {
	// Set stores the config for a task, replacing any previous one.
	Set(ctx context.Context, taskID string, config *a2a.PushNotificationConfig) error

	// Get retrieves the config for a task. Returns a2a.ErrTaskNotFound when
	// no config has been registered.
	Get(ctx context.Context, taskID string) (*a2a.PushNotificationConfig, error)

	// Delete removes the config for a task.
	Delete(ctx context.Context, taskID string) error
}

// InMemoryPushConfigStore is a PushConfigStore backed by a process-local map.
type InMemoryPushConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*a2a.PushNotificationConfig
}

var _ PushConfigStore = (*InMemoryPushConfigStore)(nil)

// NewInMemoryPushConfigStore creates an empty push config store.
func NewInMemoryPushConfigStore() *InMemoryPushConfigStore {
	return &InMemoryPushConfigStore{
		configs: make(map[string]*a2a.PushNotificationConfig),
	}
}

// Set stores the config for a task.
func (s *InMemoryPushConfigStore) Set(ctx context.Context, taskID string, config *a2a.PushNotificationConfig) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if config == nil {
		return fmt.Errorf("push notification config cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dup := *config
	s.configs[taskID] = &dup
	return nil
}

// Get retrieves the config for a task.
func (s *InMemoryPushConfigStore) Get(ctx context.Context, taskID string) (*a2a.PushNotificationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	config, ok := s.configs[taskID]
	if !ok {
		return nil, a2a.ErrTaskNotFound
	}
	dup := *config
	return &dup, nil
}

// Delete removes the config for a task.
func (s *InMemoryPushConfigStore) Delete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, taskID)
	return nil
}

// PushNotifier validates push endpoints and delivers task snapshots to them.
//
// Registration performs an ownership handshake: the endpoint is sent a GET
// with a one-time validationToken query parameter and must echo the token in
// its response body before the config is accepted. Deliveries POST the full
// task object as JSON; when a signing secret is configured each delivery
// carries an HS256 JWT bearer token.
type PushNotifier struct {
	store  PushConfigStore
	client *http.Client
	secret []byte
	logger *slog.Logger
}

// PushNotifierOptions configures a PushNotifier.
type PushNotifierOptions struct {
	Store  PushConfigStore
	Client *http.Client
	// Secret enables JWT bearer signing of deliveries when non-empty.
	Secret []byte
	Logger *slog.Logger
}

// NewPushNotifier creates a notifier over the given config store.
func NewPushNotifier(opts PushNotifierOptions) (*PushNotifier, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("push config store cannot be nil")
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PushNotifier{
		store:  opts.Store,
		client: client,
		secret: opts.Secret,
		logger: logger,
	}, nil
}

// Register validates the endpoint and stores the config for the task.
func (n *PushNotifier) Register(ctx context.Context, taskID string, config *a2a.PushNotificationConfig) error {
	if config == nil {
		return fmt.Errorf("push notification config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if err := n.verifyEndpoint(ctx, config.URL); err != nil {
		return fmt.Errorf("push endpoint verification failed: %w", err)
	}
	return n.store.Set(ctx, taskID, config)
}

// Config returns the stored config for a task.
func (n *PushNotifier) Config(ctx context.Context, taskID string) (*a2a.PushNotificationConfig, error) {
	return n.store.Get(ctx, taskID)
}

// verifyEndpoint performs the validation-token handshake.
func (n *PushNotifier) verifyEndpoint(ctx context.Context, endpoint string) error {
	token := uuid.NewString()

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid push endpoint URL: %w", err)
	}
	q := u.Query()
	q.Set(validationTokenParam, token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return err
	}
	if !strings.Contains(string(body), token) {
		return fmt.Errorf("endpoint did not echo validation token")
	}
	return nil
}

// Notify delivers the task snapshot to the task's registered endpoint, if
// any. Delivery failures are logged, not returned: push is best-effort and
// never blocks task completion.
func (n *PushNotifier) Notify(ctx context.Context, task *a2a.Task) {
	if task == nil {
		return
	}
	config, err := n.store.Get(ctx, task.ID)
	if err != nil {
		// No config registered for this task.
		return
	}

	if err := n.deliver(ctx, task, config); err != nil {
		n.logger.Error("push notification delivery failed",
			slog.String("task_id", task.ID),
			slog.String("url", config.URL),
			slog.Any("error", err),
		)
		return
	}
	n.logger.Info("push notification sent",
		slog.String("task_id", task.ID),
		slog.String("url", config.URL),
	)
}

func (n *PushNotifier) deliver(ctx context.Context, task *a2a.Task, config *a2a.PushNotificationConfig) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if config.Token != "" {
		req.Header.Set("X-A2A-Notification-Token", config.Token)
	}
	if len(n.secret) > 0 {
		bearer, err := n.signDelivery(task.ID)
		if err != nil {
			return fmt.Errorf("signing delivery: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// signDelivery mints a short-lived HS256 JWT identifying the task.
func (n *PushNotifier) signDelivery(taskID string) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		IssuedAt(now).
		Expiration(now.Add(5 * time.Minute)).
		Claim("taskId", taskID).
		Build()
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), n.secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}
