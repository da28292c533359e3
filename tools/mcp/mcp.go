// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp connects to an external Model Context Protocol tool provider
// over a stdio subprocess and exposes its tools through the tools.Tool
// interface. Any MCP server is substitutable; the default provider is the
// Tavily search server launched via npx.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/go-a2a/searchagent/tools"
)

// ServerConfig describes how to launch a tool provider subprocess.
type ServerConfig struct {
	// Name identifies the provider in logs.
	Name string
	// Command and Args form the subprocess command line.
	Command string
	Args    []string
	// Env entries are appended to the current process environment.
	Env []string
}

// TavilyServerConfig returns the launch configuration for the Tavily search
// provider.
func TavilyServerConfig(apiKey string) ServerConfig {
	return ServerConfig{
		Name:    "tavily-mcp",
		Command: "npx",
		Args:    []string{"-y", "tavily-mcp"},
		Env:     []string{"TAVILY_API_KEY=" + apiKey},
	}
}

// Client manages the connection to a single MCP server subprocess.
type Client struct {
	name    string
	cmd     *exec.Cmd
	session *mcpsdk.ClientSession
	logger  *slog.Logger
	tools   []*ProviderTool
}

// Connect starts the provider subprocess, performs the MCP handshake and
// discovers the provider's tool list, following pagination cursors.
func Connect(ctx context.Context, config ServerConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.Command(config.Command, config.Args...)
	cmd.Env = append(os.Environ(), config.Env...)
	cmd.Stderr = os.Stderr

	mcpClient := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "searchagent", Version: "v1.0.0"}, nil)
	session, err := mcpClient.Connect(ctx, mcpsdk.NewCommandTransport(cmd))
	if err != nil {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return nil, fmt.Errorf("connecting to MCP server %q: %w", config.Name, err)
	}

	client := &Client{
		name:    config.Name,
		cmd:     cmd,
		session: session,
		logger:  logger,
	}

	listParams := &mcpsdk.ListToolsParams{}
	for {
		toolList, err := session.ListTools(ctx, listParams)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("listing tools from MCP server %q: %w", config.Name, err)
		}
		for _, t := range toolList.Tools {
			client.tools = append(client.tools, &ProviderTool{
				client:      client,
				name:        t.Name,
				description: t.Description,
			})
		}
		if toolList.NextCursor == "" {
			break
		}
		listParams.Cursor = toolList.NextCursor
	}

	logger.Info("connected to MCP tool provider",
		slog.String("server", config.Name),
		slog.Int("tools", len(client.tools)),
	)
	return client, nil
}

// Tools returns the discovered provider tools.
func (c *Client) Tools() []*ProviderTool {
	return c.tools
}

// Close shuts down the session and terminates the provider subprocess.
func (c *Client) Close() error {
	if c.session != nil {
		_ = c.session.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		return c.cmd.Process.Kill()
	}
	return nil
}

// ProviderTool is one tool discovered from the provider, adapted to the
// tools.Tool interface.
type ProviderTool struct {
	client      *Client
	name        string
	description string
}

var _ tools.Tool = (*ProviderTool)(nil)

// Name returns the provider-assigned tool name.
func (t *ProviderTool) Name() string { return t.name }

// Description returns the provider-supplied description.
func (t *ProviderTool) Description() string { return t.description }

// InputSchema returns a permissive object schema. The provider validates the
// real argument shape on its side; the model infers arguments from the
// description.
func (t *ProviderTool) InputSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": true,
	}
}

// Execute invokes the tool on the provider and concatenates all text content
// from the result.
func (t *ProviderTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	result, err := t.client.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      t.name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("calling tool %q: %w", t.name, err)
	}

	var output string
	for _, content := range result.Content {
		if text, ok := content.(*mcpsdk.TextContent); ok {
			output += text.Text
		}
	}
	return output, nil
}
