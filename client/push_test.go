// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/searchagent/a2a"
)

func startReceiver(t *testing.T) *PushReceiver {
	t.Helper()
	r := NewPushReceiver("127.0.0.1:0", nil)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { r.Shutdown(t.Context()) })
	return r
}

func TestPushReceiverEchoesValidationToken(t *testing.T) {
	r := startReceiver(t)

	resp, err := http.Get(r.URL() + "?validationToken=abc123")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != "abc123" {
		t.Errorf("body = %q, want the token echoed back", body)
	}
}

func TestPushReceiverRejectsMissingToken(t *testing.T) {
	r := startReceiver(t)

	resp, err := http.Get(r.URL())
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPushReceiverAcceptsNotification(t *testing.T) {
	r := startReceiver(t)

	task := completedTask("t1", "c1", "the answer")
	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshaling task: %v", err)
	}

	resp, err := http.Post(r.URL(), "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	select {
	case got := <-r.Notifications:
		if got.ID != "t1" || got.Status.State != a2a.TaskStateCompleted {
			t.Errorf("notification = %s/%s, want t1/completed", got.ID, got.Status.State)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification delivered")
	}
}

func TestPushReceiverRejectsBadBody(t *testing.T) {
	r := startReceiver(t)

	resp, err := http.Post(r.URL(), "application/json", bytes.NewReader([]byte("{nope")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
