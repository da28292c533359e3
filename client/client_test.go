// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/searchagent/a2a"
)

func testCard() *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:    "Search Agent",
		URL:     "http://localhost/",
		Version: "1.0.0",
		Capabilities: a2a.AgentCapabilities{
			Streaming:         true,
			PushNotifications: true,
		},
		Skills: []a2a.AgentSkill{{ID: "search_web", Name: "Web Search"}},
	}
}

// rpcHandler dispatches decoded JSON-RPC requests to per-method functions.
type rpcHandler struct {
	card    *a2a.AgentCard
	methods map[string]func(req *a2a.Request) *a2a.Response
}

func (h *rpcHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		json.MarshalWrite(w, h.card)
		return
	}

	var req a2a.Request
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		json.MarshalWrite(w, a2a.NewErrorResponse("", a2a.ErrJSONParse))
		return
	}
	fn, ok := h.methods[req.Method]
	if !ok {
		json.MarshalWrite(w, a2a.NewErrorResponse(req.ID, a2a.ErrMethodNotFound))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.MarshalWrite(w, fn(&req))
}

func completedTask(taskID, contextID, answer string) *a2a.Task {
	task := &a2a.Task{
		Kind:      a2a.KindTask,
		ID:        taskID,
		ContextID: contextID,
		Status:    a2a.NewTaskStatus(a2a.TaskStateCompleted, nil),
	}
	if answer != "" {
		artifact, _ := a2a.NewTextArtifact("search_result", answer)
		task.Artifacts = []*a2a.Artifact{artifact}
	}
	return task
}

func TestFetchAgentCard(t *testing.T) {
	ts := httptest.NewServer(&rpcHandler{card: testCard()})
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	card, err := c.FetchAgentCard(t.Context())
	if err != nil {
		t.Fatalf("FetchAgentCard() error = %v", err)
	}
	if card.Name != "Search Agent" || !card.Capabilities.Streaming {
		t.Errorf("card = %+v, want streaming Search Agent", card)
	}
}

func TestSendMessage(t *testing.T) {
	var gotParams a2a.MessageSendParams
	handler := &rpcHandler{
		card: testCard(),
		methods: map[string]func(*a2a.Request) *a2a.Response{
			a2a.MethodMessageSend: func(req *a2a.Request) *a2a.Response {
				if err := json.Unmarshal(req.Params, &gotParams); err != nil {
					return a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams)
				}
				resp, _ := a2a.NewResponse(req.ID, completedTask("t1", "c1", "the answer"))
				return resp
			},
		},
	}
	ts := httptest.NewServer(handler)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	task, err := c.SendMessage(t.Context(), NewMessageSendParams("question", "", "", nil))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if task.ID != "t1" || task.Status.State != a2a.TaskStateCompleted {
		t.Errorf("task = %s/%s, want t1/completed", task.ID, task.Status.State)
	}
	if got := a2a.MessageText(gotParams.Message); got != "question" {
		t.Errorf("server received message %q, want %q", got, "question")
	}
	if gotParams.Message.Role != a2a.RoleUser {
		t.Errorf("message role = %s, want user", gotParams.Message.Role)
	}
}

func TestSendMessageProtocolError(t *testing.T) {
	handler := &rpcHandler{
		card: testCard(),
		methods: map[string]func(*a2a.Request) *a2a.Response{
			a2a.MethodMessageSend: func(req *a2a.Request) *a2a.Response {
				return a2a.NewErrorResponse(req.ID, a2a.ErrTaskNotFound)
			},
		},
	}
	ts := httptest.NewServer(handler)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.SendMessage(t.Context(), NewMessageSendParams("q", "", "", nil))
	var protoErr *a2a.Error
	if !errors.As(err, &protoErr) || protoErr.Code != a2a.ErrorCodeTaskNotFound {
		t.Errorf("SendMessage() error = %v, want TaskNotFound", err)
	}
}

func TestCancelTaskUnsupported(t *testing.T) {
	handler := &rpcHandler{
		card: testCard(),
		methods: map[string]func(*a2a.Request) *a2a.Response{
			a2a.MethodTasksCancel: func(req *a2a.Request) *a2a.Response {
				return a2a.NewErrorResponse(req.ID, a2a.ErrUnsupportedOperation)
			},
		},
	}
	ts := httptest.NewServer(handler)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.CancelTask(t.Context(), "t1")
	var protoErr *a2a.Error
	if !errors.As(err, &protoErr) || protoErr.Code != a2a.ErrorCodeUnsupportedOperation {
		t.Errorf("CancelTask() error = %v, want UnsupportedOperation", err)
	}
}

func TestSendMessageStream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req a2a.Request
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			t.Errorf("decoding request: %v", err)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		writeFrame := func(result any) {
			resp, err := a2a.NewResponse(req.ID, result)
			if err != nil {
				t.Errorf("building frame: %v", err)
				return
			}
			data, _ := json.Marshal(resp)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}

		task, _ := a2a.NewTask(a2a.NewUserTextMessage("q", "c1", "t1"))
		writeFrame(task)
		writeFrame(a2a.NewTaskStatusUpdateEvent("t1", "c1",
			a2a.NewTaskStatus(a2a.TaskStateWorking, a2a.NewAgentTextMessage("Calling tool [tavily_search]...", "c1", "t1")), false))
		writeFrame(a2a.NewTaskStatusUpdateEvent("t1", "c1",
			a2a.NewTaskStatus(a2a.TaskStateCompleted, nil), true))
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	events, err := c.SendMessageStream(t.Context(), NewMessageSendParams("q", "c1", "t1", nil))
	if err != nil {
		t.Fatalf("SendMessageStream() error = %v", err)
	}

	var kinds []string
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("stream error = %v", ev.Err)
		}
		switch {
		case ev.Result.Task != nil:
			kinds = append(kinds, "task")
		case ev.Result.StatusUpdate != nil:
			kinds = append(kinds, string(ev.Result.StatusUpdate.Status.State))
		case ev.Result.ArtifactUpdate != nil:
			kinds = append(kinds, "artifact")
		}
	}
	want := []string{"task", "working", "completed"}
	if len(kinds) != len(want) {
		t.Fatalf("frames = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("frame %d = %q, want %q", i, kinds[i], want[i])
		}
	}
}
