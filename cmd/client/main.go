// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command client is an interactive terminal client for the A2A search
// agent. It resolves the agent card, then drives a multi-turn conversation,
// optionally receiving push notifications on a local endpoint.
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-a2a/searchagent/a2a"
	"github.com/go-a2a/searchagent/client"
	"github.com/go-a2a/searchagent/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadClient(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := client.New(cfg.URL)
	if err != nil {
		return err
	}

	card, err := c.FetchAgentCard(ctx)
	if err != nil {
		return fmt.Errorf("resolving agent: %w", err)
	}
	fmt.Printf("Connected to %s (%s)\n", card.Name, card.Version)

	var pushConfig *a2a.PushNotificationConfig
	if cfg.Push {
		if !card.Capabilities.PushNotifications {
			return fmt.Errorf("agent does not support push notifications")
		}
		receiver := client.NewPushReceiver(cfg.PushAddr(), logger)
		if err := receiver.Start(); err != nil {
			return err
		}
		defer receiver.Shutdown(context.Background())
		pushConfig = &a2a.PushNotificationConfig{URL: receiver.URL()}
		fmt.Printf("Push notifications: %s\n", receiver.URL())
	}

	streaming := card.Capabilities.Streaming && !cfg.NoStreaming

	var attachment *a2a.FileWithBytes
	if cfg.File != "" {
		attachment, err = loadAttachment(cfg.File)
		if err != nil {
			return err
		}
	}

	stdin := bufio.NewReader(os.Stdin)
	prompt := func(_ context.Context, question string) (string, error) {
		if question != "" {
			fmt.Printf("\n%s\n", question)
		}
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return "", err
		}
		answer := strings.TrimSpace(line)
		if answer == "" || answer == ":q" || answer == "quit" {
			return "", io.EOF
		}
		return answer, nil
	}

	for {
		query, err := prompt(ctx, "What would you like to know? (:q to quit)")
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		loop, err := client.NewLoop(client.LoopOptions{
			Client:     c,
			Prompt:     prompt,
			Out:        os.Stdout,
			Streaming:  streaming,
			PushConfig: pushConfig,
			Attachment: attachment,
			TaskID:     cfg.TaskID,
			MaxTurns:   cfg.MaxTurns,
			Logger:     logger,
		})
		if err != nil {
			return err
		}

		task, err := loop.Run(ctx, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "task failed: %v\n", err)
			continue
		}
		if task != nil {
			fmt.Printf("\n[task %s: %s]\n", task.ID, task.Status.State)
		}
		// A --task-id resume and a --file attachment apply to the first
		// interaction only.
		cfg.TaskID = ""
		attachment = nil
	}
}

// loadAttachment reads a local file into an inline base64 file part.
func loadAttachment(path string) (*a2a.FileWithBytes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	return &a2a.FileWithBytes{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Bytes:    base64.StdEncoding.EncodeToString(data),
	}, nil
}
