// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads server and client configuration from flags,
// environment variables and an optional YAML file. Flags win over the file;
// secrets come from the environment only.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted at load time.
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvTavilyAPIKey  = "TAVILY_API_KEY"
	EnvPushSecret    = "A2A_PUSH_SECRET"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// ServerConfig holds the agent server configuration.
type ServerConfig struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Model string `yaml:"model"`

	// MCPCommand overrides the tool provider command line, e.g.
	// "npx -y tavily-mcp". Empty selects the default Tavily provider.
	MCPCommand string `yaml:"mcpCommand"`

	// Secrets are environment-only, never read from the file.
	OpenAIAPIKey  string `yaml:"-"`
	OpenAIBaseURL string `yaml:"-"`
	TavilyAPIKey  string `yaml:"-"`
	PushSecret    string `yaml:"-"`
}

// Addr returns the host:port the server binds.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate ensures required secrets are present. The server refuses to
// start without them rather than failing on the first request.
func (c *ServerConfig) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%s environment variable is not set", EnvOpenAIAPIKey)
	}
	if c.TavilyAPIKey == "" {
		return fmt.Errorf("%s environment variable is not set", EnvTavilyAPIKey)
	}
	return nil
}

// LoadServer parses server configuration from args and the environment.
func LoadServer(args []string) (*ServerConfig, error) {
	cfg := &ServerConfig{
		Host:  "localhost",
		Port:  10000,
		Model: DefaultModel,
	}

	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to YAML config file")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "host to bind")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "port to bind")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "chat model name")
	fs.StringVar(&cfg.MCPCommand, "mcp-command", cfg.MCPCommand, "tool provider command line override")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configFile != "" {
		if err := loadFile(*configFile, cfg); err != nil {
			return nil, err
		}
		// Flags set explicitly override the file.
		fs.Visit(func(f *pflag.Flag) {
			switch f.Name {
			case "host":
				cfg.Host, _ = fs.GetString("host")
			case "port":
				cfg.Port, _ = fs.GetInt("port")
			case "model":
				cfg.Model, _ = fs.GetString("model")
			case "mcp-command":
				cfg.MCPCommand, _ = fs.GetString("mcp-command")
			}
		})
	}

	cfg.OpenAIAPIKey = os.Getenv(EnvOpenAIAPIKey)
	cfg.OpenAIBaseURL = os.Getenv(EnvOpenAIBaseURL)
	cfg.TavilyAPIKey = os.Getenv(EnvTavilyAPIKey)
	cfg.PushSecret = os.Getenv(EnvPushSecret)
	return cfg, nil
}

// ClientConfig holds the interactive client configuration.
type ClientConfig struct {
	URL         string `yaml:"url"`
	Push        bool   `yaml:"push"`
	PushHost    string `yaml:"pushHost"`
	PushPort    int    `yaml:"pushPort"`
	TaskID      string `yaml:"-"`
	NoStreaming bool   `yaml:"noStreaming"`
	MaxTurns    int    `yaml:"maxTurns"`

	// File is attached to the first message of the first interaction.
	File string `yaml:"-"`
}

// PushAddr returns the host:port the push receiver binds.
func (c *ClientConfig) PushAddr() string {
	return fmt.Sprintf("%s:%d", c.PushHost, c.PushPort)
}

// LoadClient parses client configuration from args.
func LoadClient(args []string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		URL:      "http://localhost:10000",
		PushHost: "localhost",
		PushPort: 5000,
	}

	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to YAML config file")
	fs.StringVar(&cfg.URL, "url", cfg.URL, "agent endpoint URL")
	fs.BoolVar(&cfg.Push, "push", cfg.Push, "enable push notifications")
	fs.StringVar(&cfg.PushHost, "push-host", cfg.PushHost, "push receiver host")
	fs.IntVar(&cfg.PushPort, "push-port", cfg.PushPort, "push receiver port")
	fs.StringVar(&cfg.TaskID, "task-id", "", "resume an existing task")
	fs.BoolVar(&cfg.NoStreaming, "no-streaming", cfg.NoStreaming, "use blocking message/send instead of streaming")
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "maximum turns per interaction (0 for default)")
	fs.StringVar(&cfg.File, "file", "", "attach a file to the first message")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configFile != "" {
		if err := loadFile(*configFile, cfg); err != nil {
			return nil, err
		}
		fs.Visit(func(f *pflag.Flag) {
			switch f.Name {
			case "url":
				cfg.URL, _ = fs.GetString("url")
			case "push":
				cfg.Push, _ = fs.GetBool("push")
			case "push-host":
				cfg.PushHost, _ = fs.GetString("push-host")
			case "push-port":
				cfg.PushPort, _ = fs.GetInt("push-port")
			case "no-streaming":
				cfg.NoStreaming, _ = fs.GetBool("no-streaming")
			case "max-turns":
				cfg.MaxTurns, _ = fs.GetInt("max-turns")
			}
		})
	}
	return cfg, nil
}

func loadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}
