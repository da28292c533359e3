// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package server implements the A2A protocol surface of the search agent:
// request handling, the agent-to-task bridge, task storage and push
// notifications.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-a2a/searchagent/a2a"
	"github.com/go-a2a/searchagent/agent"
	"github.com/go-a2a/searchagent/server/event"
)

// ArtifactName is the name under which the agent's final answer is attached
// to the task.
const ArtifactName = "search_result"

// completionAck is the short status message accompanying the terminal
// completed update; the actual answer travels in the artifact.
const completionAck = "Task completed"

// AgentExecutor handles inbound requests by publishing task lifecycle
// events to a queue.
type AgentExecutor interface {
	// Execute processes one request. It must validate the request before
	// creating or mutating any task, and close out the stream with exactly
	// one terminal or input-required transition.
	Execute(ctx context.Context, reqCtx *RequestContext, queue *event.Queue) error

	// Cancel handles a cancellation request for a task.
	Cancel(ctx context.Context, taskID string) error
}

// EventStreamer produces a stream of classified agent events for a query.
// *agent.Agent is the production implementation.
type EventStreamer interface {
	Stream(ctx context.Context, query, contextID string) <-chan agent.Event
}

var _ EventStreamer = (*agent.Agent)(nil)

// SearchAgentExecutor bridges the conversational agent's event stream onto
// the task protocol: each agent event becomes exactly one protocol action,
// in stream order.
type SearchAgentExecutor struct {
	agent  EventStreamer
	logger *slog.Logger
}

var _ AgentExecutor = (*SearchAgentExecutor)(nil)

// NewSearchAgentExecutor creates the executor for the given agent.
func NewSearchAgentExecutor(agent EventStreamer, logger *slog.Logger) *SearchAgentExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchAgentExecutor{agent: agent, logger: logger}
}

// Execute runs the agent for the request and maps its events to task
// updates. The inbound message's task is reused when present, which keeps
// multi-turn continuation after input-required on the same task ID.
func (e *SearchAgentExecutor) Execute(ctx context.Context, reqCtx *RequestContext, queue *event.Queue) error {
	if err := reqCtx.Validate(); err != nil {
		return a2a.ErrInvalidParams.WithData(err.Error())
	}

	task := reqCtx.Task
	if task == nil {
		created, err := a2a.NewTask(reqCtx.Params.Message)
		if err != nil {
			return a2a.ErrInvalidParams.WithData(err.Error())
		}
		task = created
		if err := queue.Enqueue(ctx, task); err != nil {
			return fmt.Errorf("registering task: %w", err)
		}
	}

	updater, err := NewTaskUpdater(queue, task.ID, task.ContextID)
	if err != nil {
		return fmt.Errorf("creating task updater: %w", err)
	}

	query := reqCtx.UserInput()
	e.logger.Info("executing agent",
		slog.String("task_id", task.ID),
		slog.String("context_id", task.ContextID),
	)

	for ev := range e.agent.Stream(ctx, query, task.ContextID) {
		if err := e.apply(ctx, updater, ev); err != nil {
			return err
		}
		if ev.Kind == agent.EventCompleted || ev.Kind == agent.EventFailed {
			break
		}
	}
	return nil
}

// apply translates one agent event into its protocol action.
func (e *SearchAgentExecutor) apply(ctx context.Context, updater *TaskUpdater, ev agent.Event) error {
	var err error
	switch ev.Kind {
	case agent.EventWorking:
		err = updater.StartWork(ctx, updater.NewAgentMessage(ev.Content))
	case agent.EventInputRequired:
		err = updater.RequiresInput(ctx, updater.NewAgentMessage(ev.Content))
	case agent.EventFailed:
		err = updater.Failed(ctx, updater.NewAgentMessage(ev.Content))
	case agent.EventCompleted:
		var artifact *a2a.Artifact
		artifact, err = a2a.NewTextArtifact(ArtifactName, ev.Content)
		if err == nil {
			err = updater.AddArtifact(ctx, artifact)
		}
		if err == nil {
			err = updater.Complete(ctx, updater.NewAgentMessage(completionAck))
		}
	default:
		err = fmt.Errorf("unknown agent event kind: %q", ev.Kind)
	}
	if err != nil {
		return a2a.ErrInternal.WithData(err.Error())
	}
	return nil
}

// Cancel always fails: the agent loop has no cooperative cancellation.
func (e *SearchAgentExecutor) Cancel(ctx context.Context, taskID string) error {
	return a2a.ErrUnsupportedOperation
}
