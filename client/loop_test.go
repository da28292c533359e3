// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/searchagent/a2a"
)

// loopServer scripts one task result per message/send call and records the
// messages it received.
type loopServer struct {
	*rpcHandler
	results  []*a2a.Task
	received []*a2a.Message
	calls    int
}

func newLoopServer(results ...*a2a.Task) *loopServer {
	s := &loopServer{results: results}
	s.rpcHandler = &rpcHandler{
		card: testCard(),
		methods: map[string]func(*a2a.Request) *a2a.Response{
			a2a.MethodMessageSend: func(req *a2a.Request) *a2a.Response {
				var params a2a.MessageSendParams
				if err := json.Unmarshal(req.Params, &params); err != nil {
					return a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams)
				}
				s.received = append(s.received, params.Message)
				if s.calls >= len(s.results) {
					return a2a.NewErrorResponse(req.ID, a2a.ErrInternal)
				}
				resp, _ := a2a.NewResponse(req.ID, s.results[s.calls])
				s.calls++
				return resp
			},
		},
	}
	return s
}

func pausedTask(taskID, contextID, question string) *a2a.Task {
	return &a2a.Task{
		Kind:      a2a.KindTask,
		ID:        taskID,
		ContextID: contextID,
		Status: a2a.NewTaskStatus(a2a.TaskStateInputRequired,
			a2a.NewAgentTextMessage(question, contextID, taskID)),
	}
}

func TestLoopCompletesImmediately(t *testing.T) {
	srv := newLoopServer(completedTask("t1", "c1", "the answer"))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var out bytes.Buffer
	loop, err := NewLoop(LoopOptions{
		Client: c,
		Prompt: func(context.Context, string) (string, error) {
			t.Fatal("prompt called for a completed task")
			return "", nil
		},
		Out: &out,
	})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}

	task, err := loop.Run(t.Context(), "question")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if task.Status.State != a2a.TaskStateCompleted {
		t.Errorf("final state = %s, want completed", task.Status.State)
	}
	if !bytes.Contains(out.Bytes(), []byte("the answer")) {
		t.Errorf("output %q does not contain the artifact text", out.String())
	}
	if srv.calls != 1 {
		t.Errorf("server calls = %d, want 1", srv.calls)
	}
}

// An input-required pause re-enters with the user's answer on the same task
// and context.
func TestLoopReentersOnInputRequired(t *testing.T) {
	srv := newLoopServer(
		pausedTask("t1", "c1", "What is the missing parameter?"),
		completedTask("t1", "c1", "done"),
	)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var askedQuestion string
	loop, err := NewLoop(LoopOptions{
		Client: c,
		Prompt: func(_ context.Context, question string) (string, error) {
			askedQuestion = question
			return "the parameter is 42", nil
		},
	})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}

	task, err := loop.Run(t.Context(), "do the thing")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if task.Status.State != a2a.TaskStateCompleted {
		t.Errorf("final state = %s, want completed", task.Status.State)
	}
	if askedQuestion != "What is the missing parameter?" {
		t.Errorf("prompt question = %q", askedQuestion)
	}

	if len(srv.received) != 2 {
		t.Fatalf("server received %d messages, want 2", len(srv.received))
	}
	first, second := srv.received[0], srv.received[1]
	if first.TaskID != "" {
		t.Errorf("first message taskId = %q, want empty for a fresh task", first.TaskID)
	}
	if second.TaskID != "t1" || second.ContextID != "c1" {
		t.Errorf("second message bound to %s/%s, want t1/c1", second.TaskID, second.ContextID)
	}
	if got := a2a.MessageText(second); got != "the parameter is 42" {
		t.Errorf("second message text = %q, want the prompt answer", got)
	}
}

func TestLoopTurnBudget(t *testing.T) {
	// The agent keeps asking forever.
	var results []*a2a.Task
	for i := 0; i < 10; i++ {
		results = append(results, pausedTask("t1", "c1", "and another thing?"))
	}
	srv := newLoopServer(results...)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	loop, err := NewLoop(LoopOptions{
		Client: c,
		Prompt: func(context.Context, string) (string, error) {
			return "here", nil
		},
		MaxTurns: 3,
	})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}

	if _, err := loop.Run(t.Context(), "q"); err == nil {
		t.Error("Run() succeeded, want turn budget error")
	}
	if srv.calls != 3 {
		t.Errorf("server calls = %d, want 3", srv.calls)
	}
}

// Ending input with EOF returns the paused task instead of an error.
func TestLoopEndsOnEOF(t *testing.T) {
	srv := newLoopServer(pausedTask("t1", "c1", "more?"))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	loop, err := NewLoop(LoopOptions{
		Client: c,
		Prompt: func(context.Context, string) (string, error) {
			return "", io.EOF
		},
	})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}

	task, err := loop.Run(t.Context(), "q")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if task.Status.State != a2a.TaskStateInputRequired {
		t.Errorf("state = %s, want the paused task returned as-is", task.Status.State)
	}
}

// An attachment rides on the first message only; the input-required answer
// goes out as plain text.
func TestLoopAttachmentOnFirstMessageOnly(t *testing.T) {
	srv := newLoopServer(
		pausedTask("t1", "c1", "which section?"),
		completedTask("t1", "c1", "summarized"),
	)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	loop, err := NewLoop(LoopOptions{
		Client: c,
		Prompt: func(context.Context, string) (string, error) {
			return "the intro", nil
		},
		Attachment: &a2a.FileWithBytes{Name: "notes.txt", Bytes: "aGVsbG8="},
	})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}

	if _, err := loop.Run(t.Context(), "summarize this"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(srv.received) != 2 {
		t.Fatalf("server received %d messages, want 2", len(srv.received))
	}
	first, second := srv.received[0], srv.received[1]
	var files int
	for _, p := range first.Parts {
		if p.Kind == a2a.PartKindFile {
			files++
			if p.File.Name != "notes.txt" {
				t.Errorf("file part name = %q", p.File.Name)
			}
		}
	}
	if files != 1 {
		t.Errorf("first message file parts = %d, want 1", files)
	}
	for _, p := range second.Parts {
		if p.Kind == a2a.PartKindFile {
			t.Error("second message carries a file part, want text only")
		}
	}
}

// The loop keeps its task binding when a turn fails, so a retry resumes the
// same task.
func TestLoopKeepsIDsAcrossFailedTurn(t *testing.T) {
	srv := newLoopServer(pausedTask("t1", "c1", "more?"))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	loop, err := NewLoop(LoopOptions{
		Client: c,
		Prompt: func(context.Context, string) (string, error) {
			return "answer", nil
		},
	})
	if err != nil {
		t.Fatalf("NewLoop() error = %v", err)
	}

	// Second send hits the exhausted script and fails.
	if _, err := loop.Run(t.Context(), "q"); err == nil {
		t.Fatal("Run() succeeded, want error from exhausted server")
	}
	if loop.TaskID() != "t1" || loop.ContextID() != "c1" {
		t.Errorf("loop bound to %s/%s after failure, want t1/c1", loop.TaskID(), loop.ContextID())
	}
}
