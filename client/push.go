// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/searchagent/a2a"
)

// NotifyPath is the path the push receiver listens on.
const NotifyPath = "/notify"

// PushReceiver is the client-side push notification endpoint. It answers
// the server's validation handshake by echoing the validationToken query
// parameter and logs each delivered task snapshot.
type PushReceiver struct {
	addr       string
	logger     *slog.Logger
	server     *http.Server
	listenAddr string

	// Notifications receives each delivered task snapshot. Buffered;
	// deliveries are dropped when the buffer is full.
	Notifications chan *a2a.Task
}

// NewPushReceiver creates a receiver that will listen on addr
// (host:port; port 0 picks a free one).
func NewPushReceiver(addr string, logger *slog.Logger) *PushReceiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &PushReceiver{
		addr:          addr,
		logger:        logger,
		Notifications: make(chan *a2a.Task, 16),
	}
}

// Start binds the listener and serves on a background goroutine.
func (r *PushReceiver) Start() error {
	ln, err := net.Listen("tcp", r.addr)
	if err != nil {
		return fmt.Errorf("binding push receiver: %w", err)
	}
	r.listenAddr = ln.Addr().String()

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+NotifyPath, r.handleValidation)
	mux.HandleFunc("POST "+NotifyPath, r.handleNotification)
	r.server = &http.Server{Handler: mux}

	go func() {
		if err := r.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			r.logger.Error("push receiver stopped", slog.Any("error", err))
		}
	}()
	r.logger.Info("push receiver listening", slog.String("addr", r.listenAddr))
	return nil
}

// URL returns the notification endpoint URL. Valid after Start.
func (r *PushReceiver) URL() string {
	return "http://" + r.listenAddr + NotifyPath
}

// Shutdown stops the receiver.
func (r *PushReceiver) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.server.Shutdown(ctx)
}

// handleValidation echoes the validation token so the server accepts this
// endpoint as owned by the client.
func (r *PushReceiver) handleValidation(w http.ResponseWriter, req *http.Request) {
	token := req.URL.Query().Get("validationToken")
	if token == "" {
		http.Error(w, "missing validation token", http.StatusBadRequest)
		return
	}
	r.logger.Info("push endpoint validation", slog.String("token", token))
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, token)
}

// handleNotification accepts a task snapshot delivery.
func (r *PushReceiver) handleNotification(w http.ResponseWriter, req *http.Request) {
	var task a2a.Task
	if err := json.UnmarshalRead(req.Body, &task); err != nil {
		http.Error(w, "invalid notification body", http.StatusBadRequest)
		return
	}
	r.logger.Info("push notification received",
		slog.String("task_id", task.ID),
		slog.String("state", string(task.Status.State)),
	)

	select {
	case r.Notifications <- &task:
	default:
		r.logger.Warn("push notification buffer full, dropping",
			slog.String("task_id", task.ID))
	}
	w.WriteHeader(http.StatusOK)
}
