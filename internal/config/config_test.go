package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadConfigMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadConfig(dir); err == nil {
		t.Error("reading a missing config should fail")
	}
}

func TestWriteAndReadConfig(t *testing.T) {
	dir := t.TempDir()

	want := DefaultConfig(dir)
	want.Backend.BaseURL = "https://assess.example.com"
	want.User.ID = "user-42"
	want.Chat.TypingDelayMs = 250

	if err := WriteConfig(dir, want); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	got, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if got.Backend.BaseURL != want.Backend.BaseURL {
		t.Errorf("base url: got %q, want %q", got.Backend.BaseURL, want.Backend.BaseURL)
	}
	if got.User.ID != "user-42" {
		t.Errorf("user id: %q", got.User.ID)
	}
	if got.Chat.TypingDelayMs != 250 {
		t.Errorf("typing delay: %d", got.Chat.TypingDelayMs)
	}
	if got.Persist.MaxAttempts != 3 || got.Persist.QueueSize != 64 {
		t.Errorf("persist defaults lost on round trip: %+v", got.Persist)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())

	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("default base url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSeconds != 15 {
		t.Errorf("default timeout: %d", cfg.Backend.TimeoutSeconds)
	}
	if cfg.Chat.TypingDelayMs != 900 || cfg.Chat.LoadRetries != 3 {
		t.Errorf("chat defaults: %+v", cfg.Chat)
	}
	if cfg.Persist.DrainMs != 3000 {
		t.Errorf("drain deadline default: %d", cfg.Persist.DrainMs)
	}
	if cfg.Store.Path != "sessions.db" {
		t.Errorf("store path default: %q", cfg.Store.Path)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PATHWAY_BACKEND_URL", "http://override:9000")
	t.Setenv("PATHWAY_USER_ID", "env-user")
	t.Setenv("PATHWAY_TYPING_DELAY_MS", "50")

	cfg := DefaultConfig(t.TempDir())
	if cfg.Backend.BaseURL != "http://override:9000" {
		t.Errorf("backend url override: %q", cfg.Backend.BaseURL)
	}
	if cfg.User.ID != "env-user" {
		t.Errorf("user id override: %q", cfg.User.ID)
	}
	if cfg.Chat.TypingDelayMs != 50 {
		t.Errorf("typing delay override: %d", cfg.Chat.TypingDelayMs)
	}
}

func TestDotEnvFileIsLoaded(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("PATHWAY_USER_ID=dotenv-user\n"), 0644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	// godotenv never overrides variables already set in the process.
	t.Setenv("PATHWAY_USER_ID", "")
	os.Unsetenv("PATHWAY_USER_ID")

	cfg := DefaultConfig(dir)
	if cfg.User.ID != "dotenv-user" {
		t.Errorf("user id from .env: %q", cfg.User.ID)
	}
}

func TestStorePathResolution(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{Store: StoreConfig{Path: "sessions.db"}}
	if got, want := cfg.StorePath(dir), filepath.Join(dir, ".pathway", "sessions.db"); got != want {
		t.Errorf("relative store path: got %q, want %q", got, want)
	}

	abs := filepath.Join(dir, "elsewhere.db")
	cfg.Store.Path = abs
	if got := cfg.StorePath(dir); got != abs {
		t.Errorf("absolute store path: got %q, want %q", got, abs)
	}

	cfg.Store.Path = ""
	if got, want := cfg.StorePath(dir), filepath.Join(dir, ".pathway", "sessions.db"); got != want {
		t.Errorf("empty store path: got %q, want %q", got, want)
	}
}
