// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/searchagent/a2a"
	"github.com/go-a2a/searchagent/server/event"
)

// AgentCardPath is the well-known discovery path for the agent card.
const AgentCardPath = "/.well-known/agent.json"

// Server is the A2A HTTP surface: agent card discovery plus the JSON-RPC
// endpoint with blocking and streaming message delivery.
type Server struct {
	card      *a2a.AgentCard
	executor  AgentExecutor
	store     TaskStore
	notifier  *PushNotifier
	logger    *slog.Logger
	queueSize int
	mux       *http.ServeMux
}

var _ http.Handler = (*Server)(nil)

// Options configures a Server.
type Options struct {
	Card     *a2a.AgentCard
	Executor AgentExecutor
	// TaskStore defaults to an in-memory store.
	TaskStore TaskStore
	// Notifier enables push notification support; nil disables the
	// pushNotificationConfig methods.
	Notifier *PushNotifier
	Logger   *slog.Logger
	// QueueSize bounds each request's event queue; non-positive selects the
	// default.
	QueueSize int
}

// NewServer creates the HTTP surface for an agent.
func NewServer(opts Options) (*Server, error) {
	if opts.Card == nil {
		return nil, fmt.Errorf("agent card cannot be nil")
	}
	if err := opts.Card.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent card: %w", err)
	}
	if opts.Executor == nil {
		return nil, fmt.Errorf("agent executor cannot be nil")
	}

	store := opts.TaskStore
	if store == nil {
		store = NewInMemoryTaskStore()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		card:      opts.Card,
		executor:  opts.Executor,
		store:     store,
		notifier:  opts.Notifier,
		logger:    logger,
		queueSize: opts.QueueSize,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+AgentCardPath, s.handleAgentCard)
	mux.HandleFunc("POST /", s.handleRPC)
	s.mux = mux
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.MarshalWrite(w, s.card); err != nil {
		s.logger.Error("writing agent card", slog.Any("error", err))
	}
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req a2a.Request
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse("", a2a.ErrJSONParse.WithData(err.Error())))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInvalidRequest.WithData(err.Error())))
		return
	}

	ctx := r.Context()
	switch req.Method {
	case a2a.MethodMessageSend:
		s.handleMessageSend(ctx, w, &req)
	case a2a.MethodMessageStream:
		s.handleMessageStream(ctx, w, &req)
	case a2a.MethodTasksGet:
		s.handleTasksGet(ctx, w, &req)
	case a2a.MethodTasksCancel:
		s.handleTasksCancel(ctx, w, &req)
	case a2a.MethodPushNotificationConfigSet:
		s.handlePushConfigSet(ctx, w, &req)
	case a2a.MethodPushNotificationConfigGet:
		s.handlePushConfigGet(ctx, w, &req)
	default:
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrMethodNotFound.WithData(req.Method)))
	}
}

// buildRequestContext decodes send params and resolves the task the message
// continues, when it names one.
func (s *Server) buildRequestContext(ctx context.Context, req *a2a.Request) (*RequestContext, error) {
	var params a2a.MessageSendParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, a2a.ErrInvalidParams.WithData(err.Error())
	}
	if err := params.Validate(); err != nil {
		return nil, a2a.ErrInvalidParams.WithData(err.Error())
	}

	reqCtx := &RequestContext{Params: &params}
	if taskID := params.Message.TaskID; taskID != "" {
		task, err := s.store.Get(ctx, taskID)
		if err != nil {
			return nil, err
		}
		reqCtx.Task = task
	}
	return reqCtx, nil
}

// registerPushConfig stores a push config supplied inline with a send
// request.
func (s *Server) registerPushConfig(ctx context.Context, taskID string, params *a2a.MessageSendParams) error {
	if params.Configuration == nil || params.Configuration.PushNotificationConfig == nil {
		return nil
	}
	if s.notifier == nil {
		return a2a.ErrPushNotificationNotSupported
	}
	return s.notifier.Register(ctx, taskID, params.Configuration.PushNotificationConfig)
}

func (s *Server) handleMessageSend(ctx context.Context, w http.ResponseWriter, req *a2a.Request) {
	reqCtx, err := s.buildRequestContext(ctx, req)
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}

	queue := s.runExecutor(ctx, reqCtx)

	task := reqCtx.Task
	for {
		ev, err := queue.Dequeue(ctx)
		if err != nil {
			break
		}
		task, err = s.applyEvent(ctx, task, ev)
		if err != nil {
			s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
			return
		}
	}
	if err := <-queue.ExecutorErr(); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	if task == nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInternal.WithData("executor produced no task")))
		return
	}

	if err := s.registerPushConfig(ctx, task.ID, reqCtx.Params); err != nil {
		s.logger.Warn("push config registration failed",
			slog.String("task_id", task.ID), slog.Any("error", err))
	}
	s.maybeNotify(ctx, task)

	resp, err := a2a.NewResponse(req.ID, task)
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	s.writeResponse(w, resp)
}

func (s *Server) handleMessageStream(ctx context.Context, w http.ResponseWriter, req *a2a.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInternal.WithData("streaming not supported by transport")))
		return
	}

	reqCtx, err := s.buildRequestContext(ctx, req)
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}

	queue := s.runExecutor(ctx, reqCtx)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	task := reqCtx.Task
	if task != nil {
		// Resubscribing to an existing task replays its current snapshot
		// before live updates.
		if err := s.writeSSEFrame(w, flusher, req.ID, task); err != nil {
			return
		}
	}

	for {
		ev, err := queue.Dequeue(ctx)
		if err != nil {
			break
		}
		task, err = s.applyEvent(ctx, task, ev)
		if err != nil {
			s.writeSSEError(w, flusher, req.ID, err)
			return
		}
		if err := s.writeSSEFrame(w, flusher, req.ID, ev); err != nil {
			s.logger.Debug("stream client disconnected", slog.Any("error", err))
			// Keep draining so the stored task still reaches its final state.
			continue
		}
	}
	if err := <-queue.ExecutorErr(); err != nil {
		s.writeSSEError(w, flusher, req.ID, err)
		return
	}
	if task != nil {
		if err := s.registerPushConfig(ctx, task.ID, reqCtx.Params); err != nil {
			s.logger.Warn("push config registration failed",
				slog.String("task_id", task.ID), slog.Any("error", err))
		}
		s.maybeNotify(ctx, task)
	}
}

func (s *Server) handleTasksGet(ctx context.Context, w http.ResponseWriter, req *a2a.Request) {
	var params a2a.TaskQueryParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams.WithData(err.Error())))
		return
	}
	if err := params.Validate(); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams.WithData(err.Error())))
		return
	}

	task, err := s.store.Get(ctx, params.ID)
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	if params.HistoryLength > 0 && len(task.History) > params.HistoryLength {
		task.History = task.History[len(task.History)-params.HistoryLength:]
	}

	resp, err := a2a.NewResponse(req.ID, task)
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	s.writeResponse(w, resp)
}

func (s *Server) handleTasksCancel(ctx context.Context, w http.ResponseWriter, req *a2a.Request) {
	var params a2a.TaskIDParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams.WithData(err.Error())))
		return
	}
	if err := params.Validate(); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams.WithData(err.Error())))
		return
	}

	if _, err := s.store.Get(ctx, params.ID); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	if err := s.executor.Cancel(ctx, params.ID); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}

	// Unreachable with the search executor, which never accepts
	// cancellation; kept for executors that do.
	task, err := s.store.Get(ctx, params.ID)
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	resp, err := a2a.NewResponse(req.ID, task)
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	s.writeResponse(w, resp)
}

func (s *Server) handlePushConfigSet(ctx context.Context, w http.ResponseWriter, req *a2a.Request) {
	if s.notifier == nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrPushNotificationNotSupported))
		return
	}

	var params a2a.TaskPushNotificationConfig
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams.WithData(err.Error())))
		return
	}
	if err := params.Validate(); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams.WithData(err.Error())))
		return
	}

	if _, err := s.store.Get(ctx, params.TaskID); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	if err := s.notifier.Register(ctx, params.TaskID, &params.PushNotificationConfig); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}

	resp, err := a2a.NewResponse(req.ID, &params)
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	s.writeResponse(w, resp)
}

func (s *Server) handlePushConfigGet(ctx context.Context, w http.ResponseWriter, req *a2a.Request) {
	if s.notifier == nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrPushNotificationNotSupported))
		return
	}

	var params a2a.TaskIDParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams.WithData(err.Error())))
		return
	}
	if err := params.Validate(); err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, a2a.ErrInvalidParams.WithData(err.Error())))
		return
	}

	config, err := s.notifier.Config(ctx, params.ID)
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}

	resp, err := a2a.NewResponse(req.ID, &a2a.TaskPushNotificationConfig{
		TaskID:                 params.ID,
		PushNotificationConfig: *config,
	})
	if err != nil {
		s.writeResponse(w, a2a.NewErrorResponse(req.ID, err))
		return
	}
	s.writeResponse(w, resp)
}

// executorQueue pairs a request's event queue with the executor's exit
// status. The error channel is buffered and carries exactly one value.
type executorQueue struct {
	*event.Queue
	errc chan error
}

func (q *executorQueue) ExecutorErr() <-chan error {
	return q.errc
}

// runExecutor starts the executor on its own goroutine. The queue is closed
// when execution finishes, which unblocks the draining consumer.
func (s *Server) runExecutor(ctx context.Context, reqCtx *RequestContext) *executorQueue {
	queue := &executorQueue{
		Queue: event.NewQueue(s.queueSize),
		errc:  make(chan error, 1),
	}
	go func() {
		defer queue.Close()
		queue.errc <- s.executor.Execute(ctx, reqCtx, queue.Queue)
	}()
	return queue
}

// applyEvent folds one queue event into the stored task and returns the
// updated snapshot.
func (s *Server) applyEvent(ctx context.Context, task *a2a.Task, ev event.Event) (*a2a.Task, error) {
	switch ev := ev.(type) {
	case *a2a.Task:
		task = ev
	case *a2a.TaskStatusUpdateEvent:
		if task == nil {
			return nil, fmt.Errorf("status update %s for unregistered task", ev.TaskID)
		}
		task.Status = ev.Status
		if ev.Status.Message != nil {
			task.History = append(task.History, ev.Status.Message)
		}
	case *a2a.TaskArtifactUpdateEvent:
		if task == nil {
			return nil, fmt.Errorf("artifact update %s for unregistered task", ev.TaskID)
		}
		task.Artifacts = append(task.Artifacts, ev.Artifact)
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}

	if err := s.store.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("persisting task: %w", err)
	}
	return task, nil
}

// maybeNotify pushes the final task snapshot to the registered endpoint.
func (s *Server) maybeNotify(ctx context.Context, task *a2a.Task) {
	if s.notifier == nil || task == nil || !task.IsTerminal() {
		return
	}
	s.notifier.Notify(ctx, task)
}

func (s *Server) writeResponse(w http.ResponseWriter, resp *a2a.Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.MarshalWrite(w, resp); err != nil {
		s.logger.Error("writing response", slog.Any("error", err))
	}
}

// writeSSEFrame writes one stream result wrapped in a JSON-RPC response
// envelope as an SSE data frame.
func (s *Server) writeSSEFrame(w http.ResponseWriter, flusher http.Flusher, id string, result any) error {
	resp, err := a2a.NewResponse(id, result)
	if err != nil {
		return err
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func (s *Server) writeSSEError(w http.ResponseWriter, flusher http.Flusher, id string, err error) {
	resp := a2a.NewErrorResponse(id, err)
	data, merr := json.Marshal(resp)
	if merr != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
