// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-a2a/searchagent/a2a"
)

// DefaultMaxTurns bounds one interaction: the number of times the loop will
// answer an input-required pause before giving up.
const DefaultMaxTurns = 10

// PromptFunc supplies the user's answer when the agent pauses for more
// input. Returning io.EOF ends the interaction.
type PromptFunc func(ctx context.Context, question string) (string, error)

// Loop drives a multi-turn interaction with an agent. When a turn ends in
// input-required, the loop prompts for an answer and resubmits it on the
// same task and context, so the agent resumes with full conversation state.
type Loop struct {
	client     *Client
	prompt     PromptFunc
	out        io.Writer
	streaming  bool
	pushConfig *a2a.PushNotificationConfig
	attachment *a2a.FileWithBytes
	maxTurns   int
	logger     *slog.Logger

	// IDs survive across turns, and across a failed turn, so an
	// interaction can resume where it stopped.
	taskID    string
	contextID string
}

// LoopOptions configures a Loop.
type LoopOptions struct {
	Client *Client
	Prompt PromptFunc
	// Out receives agent progress and results. Defaults to io.Discard.
	Out io.Writer
	// Streaming selects message/stream; message/send otherwise.
	Streaming bool
	// PushConfig, when set, is attached to every send so the server
	// notifies the endpoint on completion.
	PushConfig *a2a.PushNotificationConfig
	// Attachment, when set, is carried as a file part on the first
	// message of the interaction.
	Attachment *a2a.FileWithBytes
	// TaskID resumes an existing task instead of starting fresh.
	TaskID   string
	MaxTurns int
	Logger   *slog.Logger
}

// NewLoop creates an interaction loop.
func NewLoop(opts LoopOptions) (*Loop, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if opts.Prompt == nil {
		return nil, fmt.Errorf("prompt function cannot be nil")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		client:     opts.Client,
		prompt:     opts.Prompt,
		out:        out,
		streaming:  opts.Streaming,
		pushConfig: opts.PushConfig,
		attachment: opts.Attachment,
		maxTurns:   maxTurns,
		logger:     logger,
		taskID:     opts.TaskID,
	}, nil
}

// TaskID returns the task the loop is bound to, once known.
func (l *Loop) TaskID() string { return l.taskID }

// ContextID returns the conversation context, once known.
func (l *Loop) ContextID() string { return l.contextID }

// Run drives the interaction starting from the given query until the task
// reaches a terminal state, the turn budget runs out, or input ends. It
// returns the final task snapshot.
func (l *Loop) Run(ctx context.Context, query string) (*a2a.Task, error) {
	var task *a2a.Task
	for turn := 0; turn < l.maxTurns; turn++ {
		var err error
		task, err = l.runTurn(ctx, query)
		if err != nil {
			return nil, err
		}

		switch task.Status.State {
		case a2a.TaskStateInputRequired:
			question := a2a.MessageText(task.Status.Message)
			answer, err := l.prompt(ctx, question)
			if err != nil {
				if err == io.EOF {
					return task, nil
				}
				return task, err
			}
			query = answer
		default:
			return task, nil
		}
	}
	return task, fmt.Errorf("interaction exceeded %d turns without completing", l.maxTurns)
}

// runTurn submits one message and waits for the turn's resting state.
func (l *Loop) runTurn(ctx context.Context, query string) (*a2a.Task, error) {
	params := NewMessageSendParams(query, l.contextID, l.taskID, l.pushConfig)
	if l.attachment != nil {
		params.Message.Parts = append(params.Message.Parts, a2a.NewFilePart(l.attachment))
		l.attachment = nil
	}

	if !l.streaming {
		task, err := l.client.SendMessage(ctx, params)
		if err != nil {
			return nil, err
		}
		l.adopt(task.ID, task.ContextID)
		l.render(task)
		return task, nil
	}

	turnCtx, cancel := context.WithTimeout(ctx, defaultStreamTimeout)
	defer cancel()

	events, err := l.client.SendMessageStream(turnCtx, params)
	if err != nil {
		return nil, err
	}

	var lastState a2a.TaskState
	var artifacts []*a2a.Artifact
	for ev := range events {
		if ev.Err != nil {
			return nil, ev.Err
		}
		switch {
		case ev.Result.Task != nil:
			l.adopt(ev.Result.Task.ID, ev.Result.Task.ContextID)
			lastState = ev.Result.Task.Status.State
		case ev.Result.StatusUpdate != nil:
			update := ev.Result.StatusUpdate
			l.adopt(update.TaskID, update.ContextID)
			lastState = update.Status.State
			if text := a2a.MessageText(update.Status.Message); text != "" {
				fmt.Fprintf(l.out, "[%s] %s\n", update.Status.State, text)
			}
		case ev.Result.ArtifactUpdate != nil:
			artifacts = append(artifacts, ev.Result.ArtifactUpdate.Artifact)
		}
	}

	if l.taskID == "" {
		return nil, fmt.Errorf("stream ended without a task")
	}
	for _, artifact := range artifacts {
		l.renderArtifact(artifact)
	}

	// The stream carries deltas; fetch the snapshot to return a coherent
	// task. The stream's resting state wins if the fetch races.
	task, err := l.client.GetTask(ctx, &a2a.TaskQueryParams{ID: l.taskID})
	if err != nil {
		return nil, err
	}
	if lastState != "" {
		task.Status.State = lastState
	}
	return task, nil
}

func (l *Loop) adopt(taskID, contextID string) {
	if l.taskID == "" {
		l.taskID = taskID
	}
	if l.contextID == "" {
		l.contextID = contextID
	}
}

func (l *Loop) render(task *a2a.Task) {
	if text := a2a.MessageText(task.Status.Message); text != "" {
		fmt.Fprintf(l.out, "[%s] %s\n", task.Status.State, text)
	}
	for _, artifact := range task.Artifacts {
		l.renderArtifact(artifact)
	}
}

func (l *Loop) renderArtifact(artifact *a2a.Artifact) {
	if artifact == nil {
		return
	}
	for _, part := range artifact.Parts {
		if part.Kind == a2a.PartKindText && part.Text != "" {
			fmt.Fprintf(l.out, "%s\n", part.Text)
		}
	}
}
