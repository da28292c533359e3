// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent implements the conversational agent core: an LLM-driven
// tool-calling loop with checkpointed per-context memory, exposed as a
// stream of classified events.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/searchagent/llm"
	"github.com/go-a2a/searchagent/tools"
)

// SystemInstruction steers the model to emit a structured directive when a
// tool call needs information only the user can provide.
const SystemInstruction = `You are an intelligent assistant that uses tools to complete the given task.
If a tool call requires information that only the user can provide, respond with exactly the
following JSON string and nothing else:
{"status": "input-required", "message": "{the information you need from the user}"}`

// SupportedContentTypes lists the content types the agent accepts and produces.
var SupportedContentTypes = []string{"text", "text/plain"}

// DefaultMaxSteps bounds the reasoning loop for a single invocation.
const DefaultMaxSteps = 20

// inputRequiredMarker is the status value of the structured directive.
const inputRequiredMarker = "input-required"

// ToolSource supplies the agent's tool set. It is invoked at most once, on
// first use; typically it connects to the external MCP provider and appends
// the synthetic email tool.
type ToolSource func(ctx context.Context) ([]tools.Tool, error)

// Options configures an Agent.
type Options struct {
	// LLM is the chat-completion backend. Required.
	LLM llm.Client
	// Checkpoints stores per-context turn history. Defaults to a MemorySaver.
	Checkpoints CheckpointStore
	// Tools supplies the tool set on first use. Optional; a nil source
	// leaves the agent without tools.
	Tools ToolSource
	// MaxSteps bounds the reasoning loop. Defaults to DefaultMaxSteps.
	MaxSteps int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Agent wraps the LLM reasoning loop with tool calling and checkpointed
// memory. One Agent serves many contexts concurrently; the tool set and
// registry are constructed lazily, exactly once.
type Agent struct {
	llm         llm.Client
	checkpoints CheckpointStore
	toolSource  ToolSource
	maxSteps    int
	logger      *slog.Logger

	initOnce sync.Once
	initErr  error
	registry *tools.Registry
	toolDefs []llm.ToolDef
}

// New creates an Agent from the given options.
func New(opts Options) (*Agent, error) {
	if opts.LLM == nil {
		return nil, fmt.Errorf("LLM client cannot be nil")
	}
	checkpoints := opts.Checkpoints
	if checkpoints == nil {
		checkpoints = NewMemorySaver()
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Agent{
		llm:         opts.LLM,
		checkpoints: checkpoints,
		toolSource:  opts.Tools,
		maxSteps:    maxSteps,
		logger:      logger,
	}, nil
}

// ensureReady constructs the tool set on first use and caches it for the
// agent's lifetime. It is idempotent; a failed construction is cached too.
func (a *Agent) ensureReady(ctx context.Context) error {
	a.initOnce.Do(func() {
		a.registry = tools.NewRegistry()
		if a.toolSource == nil {
			return
		}

		toolSet, err := a.toolSource(ctx)
		if err != nil {
			a.initErr = fmt.Errorf("constructing tool set: %w", err)
			return
		}
		names := make([]string, 0, len(toolSet))
		for _, t := range toolSet {
			a.registry.Register(t)
			names = append(names, t.Name())
		}
		for _, t := range a.registry.All() {
			a.toolDefs = append(a.toolDefs, llm.ToolDef{
				Name:        t.Name(),
				Description: t.Description(),
				InputSchema: t.InputSchema(),
			})
		}
		a.logger.Info("agent tool set ready", slog.Any("tools", names))
	})
	return a.initErr
}

// Stream runs the reasoning loop for query under contextID and returns a
// channel of classified events. Events arrive in the exact order the
// underlying steps occur; the channel closes after a completed,
// input-required or failed event, or once the step budget is exhausted.
// The full turn history is persisted under contextID as a side effect.
func (a *Agent) Stream(ctx context.Context, query, contextID string) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		emit := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if err := a.ensureReady(ctx); err != nil {
			emit(Event{Kind: EventFailed, Content: err.Error()})
			return
		}

		history, err := a.checkpoints.Load(ctx, contextID)
		if err != nil {
			emit(Event{Kind: EventFailed, Content: err.Error()})
			return
		}
		history = append(history, llm.Message{Role: llm.RoleUser, Content: query})

		for step := 0; step < a.maxSteps; step++ {
			reply, err := a.llm.Chat(ctx, SystemInstruction, history, a.toolDefs)
			if err != nil {
				emit(Event{Kind: EventFailed, Content: err.Error()})
				return
			}
			history = append(history, *reply)

			if len(reply.ToolCalls) == 0 {
				if saveErr := a.checkpoints.Save(ctx, contextID, history); saveErr != nil {
					a.logger.Warn("saving checkpoint failed",
						slog.String("context_id", contextID), slog.Any("error", saveErr))
				}
				emit(classifyFinal(reply.Content))
				return
			}

			// Only the first pending call is described, even when the model
			// requested several.
			if !emit(Event{
				Kind:    EventWorking,
				Content: fmt.Sprintf("Calling tool [%s]...", reply.ToolCalls[0].Name),
			}) {
				return
			}

			for _, call := range reply.ToolCalls {
				output, err := a.registry.Execute(ctx, call.Name, call.Args)
				if err != nil {
					emit(Event{Kind: EventFailed, Content: err.Error()})
					return
				}
				history = append(history, llm.Message{
					Role:       llm.RoleTool,
					Content:    output,
					ToolCallID: call.ID,
				})
			}

			if saveErr := a.checkpoints.Save(ctx, contextID, history); saveErr != nil {
				a.logger.Warn("saving checkpoint failed",
					slog.String("context_id", contextID), slog.Any("error", saveErr))
			}

			if !emit(Event{Kind: EventWorking, Content: "Processing tool result..."}) {
				return
			}
		}

		emit(Event{
			Kind:    EventFailed,
			Content: fmt.Sprintf("reasoning loop exceeded %d steps without a final answer", a.maxSteps),
		})
	}()

	return events
}

// classifyFinal maps a final model message to an event.
//
// A payload containing the input-required marker is parsed as the structured
// directive: a well-formed directive yields an input-required event, while a
// payload that merely contains the marker without being valid JSON yields a
// failed event carrying the parse error. Everything else is a completed
// answer.
func classifyFinal(content string) Event {
	if !strings.Contains(content, inputRequiredMarker) {
		return Event{Kind: EventCompleted, Content: content}
	}

	var directive struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(content), &directive); err != nil {
		return Event{Kind: EventFailed, Content: err.Error()}
	}
	if directive.Status != inputRequiredMarker {
		return Event{Kind: EventCompleted, Content: content}
	}

	message := directive.Message
	if message == "" {
		message = "More information is required"
	}
	return Event{Kind: EventInputRequired, Content: message}
}

// History returns the stored turn history for contextID. A context that
// never existed yields an empty history.
func (a *Agent) History(ctx context.Context, contextID string) ([]llm.Message, error) {
	return a.checkpoints.Load(ctx, contextID)
}

// ClearHistory removes the stored history for contextID. It is idempotent
// and reports whether the context existed.
func (a *Agent) ClearHistory(ctx context.Context, contextID string) (bool, error) {
	return a.checkpoints.Clear(ctx, contextID)
}

// Contexts enumerates all stored context IDs.
func (a *Agent) Contexts(ctx context.Context) ([]string, error) {
	return a.checkpoints.Contexts(ctx)
}
