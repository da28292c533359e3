// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	t.Setenv(EnvTavilyAPIKey, "tvly-test")

	cfg, err := LoadServer(nil)
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.Addr() != "localhost:10000" {
		t.Errorf("Addr() = %q, want localhost:10000", cfg.Addr())
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-test" || cfg.TavilyAPIKey != "tvly-test" {
		t.Error("secrets not loaded from environment")
	}
}

func TestLoadServerMissingSecrets(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	t.Setenv(EnvTavilyAPIKey, "")

	cfg, err := LoadServer(nil)
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() without secrets succeeded, want error")
	}
}

func TestLoadServerFlagsOverrideFile(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "sk")
	t.Setenv(EnvTavilyAPIKey, "tv")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("host: filehost\nport: 7000\nmodel: file-model\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadServer([]string{"--config", path, "--port", "8000"})
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.Host != "filehost" {
		t.Errorf("Host = %q, want value from file", cfg.Host)
	}
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want explicit flag to win over file", cfg.Port)
	}
	if cfg.Model != "file-model" {
		t.Errorf("Model = %q, want value from file", cfg.Model)
	}
}

func TestLoadClientFlags(t *testing.T) {
	cfg, err := LoadClient([]string{
		"--url", "http://agent:9000",
		"--push",
		"--push-port", "6001",
		"--task-id", "t-9",
		"--no-streaming",
	})
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.URL != "http://agent:9000" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if !cfg.Push || cfg.PushAddr() != "localhost:6001" {
		t.Errorf("push config = %v %q", cfg.Push, cfg.PushAddr())
	}
	if cfg.TaskID != "t-9" || !cfg.NoStreaming {
		t.Errorf("TaskID = %q NoStreaming = %v", cfg.TaskID, cfg.NoStreaming)
	}
}
