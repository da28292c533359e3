// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command server runs the A2A search agent: an OpenAI-backed conversational
// agent with Tavily web search tools, exposed over the A2A protocol.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-a2a/searchagent/a2a"
	"github.com/go-a2a/searchagent/agent"
	"github.com/go-a2a/searchagent/config"
	"github.com/go-a2a/searchagent/llm"
	"github.com/go-a2a/searchagent/server"
	"github.com/go-a2a/searchagent/tools"
	"github.com/go-a2a/searchagent/tools/mcp"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadServer(args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chat, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model)
	if err != nil {
		return fmt.Errorf("creating chat client: %w", err)
	}

	mcpConfig := mcp.TavilyServerConfig(cfg.TavilyAPIKey)
	if cfg.MCPCommand != "" {
		parts := strings.Fields(cfg.MCPCommand)
		mcpConfig.Name = parts[0]
		mcpConfig.Command = parts[0]
		mcpConfig.Args = parts[1:]
	}
	mcpClient, err := mcp.Connect(ctx, mcpConfig, logger)
	if err != nil {
		return fmt.Errorf("connecting to tool server %q: %w", mcpConfig.Name, err)
	}
	defer mcpClient.Close()

	searchAgent, err := agent.New(agent.Options{
		LLM:         chat,
		Checkpoints: agent.NewMemorySaver(),
		Tools: func(context.Context) ([]tools.Tool, error) {
			var all []tools.Tool
			for _, t := range mcpClient.Tools() {
				all = append(all, t)
			}
			all = append(all, tools.NewEmailTool(logger))
			return all, nil
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}

	notifier, err := server.NewPushNotifier(server.PushNotifierOptions{
		Store:  server.NewInMemoryPushConfigStore(),
		Secret: []byte(cfg.PushSecret),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	srv, err := server.NewServer(server.Options{
		Card:     agentCard(cfg),
		Executor: server.NewSearchAgentExecutor(searchAgent, logger),
		Notifier: notifier,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr()))
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func agentCard(cfg *config.ServerConfig) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:        "Search Agent",
		Description: "Answers questions using Tavily web search.",
		URL:         fmt.Sprintf("http://%s/", cfg.Addr()),
		Version:     "1.0.0",
		Capabilities: a2a.AgentCapabilities{
			Streaming:         true,
			PushNotifications: true,
		},
		DefaultInputModes:  agent.SupportedContentTypes,
		DefaultOutputModes: agent.SupportedContentTypes,
		Skills: []a2a.AgentSkill{
			{
				ID:          "search_web",
				Name:        "Web Search",
				Description: "Searches the web and synthesizes an answer with sources.",
				Tags:        []string{"search", "web"},
				Examples:    []string{"Who is the current president of the United States?"},
			},
		},
	}
}
