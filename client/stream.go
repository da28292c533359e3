// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/go-a2a/searchagent/a2a"
	"github.com/go-a2a/searchagent/internal/sse"
)

// StreamEvent is one decoded message/stream frame: either a stream result or
// a protocol error carried in the frame's response envelope.
type StreamEvent struct {
	Result *a2a.StreamResult
	Err    error
}

// SendMessageStream delivers a message with message/stream and returns a
// channel of decoded frames. The channel closes when the stream ends; a
// frame-level error is the last event delivered.
func (c *Client) SendMessageStream(ctx context.Context, params *a2a.MessageSendParams) (<-chan StreamEvent, error) {
	req, err := a2a.NewRequest(uuid.NewString(), a2a.MethodMessageStream, params)
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
	httpReq.Header.Set("Accept", "text/event-stream")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("opening stream: status %d: %s", httpResp.StatusCode, data)
	}

	events := make(chan StreamEvent)
	go func() {
		defer close(events)
		defer httpResp.Body.Close()

		decoder := sse.NewDecoder(httpResp.Body)
		for {
			frame, err := decoder.Decode()
			if err != nil {
				if err != io.EOF {
					emitStreamEvent(ctx, events, StreamEvent{Err: err})
				}
				return
			}
			ev := decodeFrame(frame)
			if !emitStreamEvent(ctx, events, ev) {
				return
			}
			if ev.Err != nil {
				return
			}
		}
	}()
	return events, nil
}

// decodeFrame unwraps the JSON-RPC envelope and discriminates the result by
// its "kind" field.
func decodeFrame(frame *sse.Event) StreamEvent {
	var resp a2a.Response
	if err := json.Unmarshal([]byte(frame.Data), &resp); err != nil {
		return StreamEvent{Err: fmt.Errorf("decoding stream frame: %w", err)}
	}
	if resp.Error != nil {
		return StreamEvent{Err: resp.Error}
	}
	result, err := a2a.UnmarshalStreamResult(resp.Result)
	if err != nil {
		return StreamEvent{Err: fmt.Errorf("decoding stream result: %w", err)}
	}
	return StreamEvent{Result: result}
}

func emitStreamEvent(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
