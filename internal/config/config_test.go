package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Attempts.Text != 3 || cfg.Attempts.Image != 3 || cfg.Attempts.Overlay != 3 {
		t.Errorf("attempt defaults = %+v, want 3/3/3", cfg.Attempts)
	}
	if cfg.Timeouts.Generate != 60*time.Second {
		t.Errorf("generate timeout = %v, want 60s", cfg.Timeouts.Generate)
	}
	if cfg.Paths.OutputDir != "output" {
		t.Errorf("output dir = %s, want output", cfg.Paths.OutputDir)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
attempts:
  text: 5
  overlay: 1
anthropic:
  model: claude-sonnet-4-20250514
editor:
  base_url: http://localhost:9999
  timeout: 30s
timeouts:
  generate: 45s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Attempts.Text != 5 {
		t.Errorf("attempts.text = %d, want 5", cfg.Attempts.Text)
	}
	// Unset keys keep their defaults.
	if cfg.Attempts.Image != 3 {
		t.Errorf("attempts.image = %d, want default 3", cfg.Attempts.Image)
	}
	if cfg.Attempts.Overlay != 1 {
		t.Errorf("attempts.overlay = %d, want 1", cfg.Attempts.Overlay)
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %s", cfg.Anthropic.Model)
	}
	if cfg.Editor.BaseURL != "http://localhost:9999" {
		t.Errorf("editor.base_url = %s", cfg.Editor.BaseURL)
	}
	if cfg.Editor.Timeout != 30*time.Second {
		t.Errorf("editor.timeout = %v, want 30s", cfg.Editor.Timeout)
	}
	if cfg.Timeouts.Generate != 45*time.Second {
		t.Errorf("timeouts.generate = %v, want 45s", cfg.Timeouts.Generate)
	}
}

func TestLoadFromPathExpandsEnv(t *testing.T) {
	t.Setenv("TEST_POSTER_KEY", "sk-from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("anthropic:\n  api_key: ${TEST_POSTER_KEY}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Anthropic.APIKey != "sk-from-env" {
		t.Errorf("api_key = %q, want expanded env value", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFromPath() = nil for a missing file")
	}
}
