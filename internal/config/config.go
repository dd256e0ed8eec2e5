// Package config handles reading and writing .pathway/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .pathway/config.yaml.
type Config struct {
	Version int           `yaml:"version"`
	Backend BackendConfig `yaml:"backend"`
	User    UserConfig    `yaml:"user"`
	Chat    ChatConfig    `yaml:"chat"`
	Persist PersistConfig `yaml:"persist"`
	Store   StoreConfig   `yaml:"store"`
}

// BackendConfig locates the assessment backend.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// UserConfig identifies the assessment user.
type UserConfig struct {
	ID string `yaml:"id"`
}

// ChatConfig controls chat pacing and the initial-load retry policy.
type ChatConfig struct {
	TypingDelayMs int `yaml:"typing_delay_ms"` // pause before the next question appears
	LoadRetries   int `yaml:"load_retries"`    // automatic retries of the initial fetch
	LoadBackoffMs int `yaml:"load_backoff_ms"` // base backoff between load retries
}

// PersistConfig controls the background answer-persistence queue.
type PersistConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BackoffMs   int `yaml:"backoff_ms"`
	QueueSize   int `yaml:"queue_size"`
	DrainMs     int `yaml:"drain_ms"` // completion-time drain deadline
}

// StoreConfig locates the local SQLite session store.
type StoreConfig struct {
	Path string `yaml:"path"` // relative paths resolve against the config dir
}

// configFileName is the path relative to the user's working directory.
const configDir = ".pathway"
const configFile = "config.yaml"

// Environment override variables, loaded after an optional .env file.
const (
	envBackendURL = "PATHWAY_BACKEND_URL"
	envUserID     = "PATHWAY_USER_ID"
)

// ReadConfig reads .pathway/config.yaml from the given directory and
// applies environment overrides. dir is the working directory (not
// .pathway/ itself). Returns an error if the file is not found or YAML
// is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(dir, &cfg)
	return &cfg, nil
}

// WriteConfig writes cfg to .pathway/config.yaml in the given directory.
// Creates the .pathway/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
// Environment overrides are applied so a bare checkout still picks up
// PATHWAY_BACKEND_URL / PATHWAY_USER_ID.
func DefaultConfig(dir string) *Config {
	cfg := &Config{
		Version: 1,
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 15,
		},
		Chat: ChatConfig{
			TypingDelayMs: 900,
			LoadRetries:   3,
			LoadBackoffMs: 1000,
		},
		Persist: PersistConfig{
			MaxAttempts: 3,
			BackoffMs:   500,
			QueueSize:   64,
			DrainMs:     3000,
		},
		Store: StoreConfig{
			Path: "sessions.db",
		},
	}
	applyEnv(dir, cfg)
	return cfg
}

// StorePath resolves the session store location. Relative paths land
// inside the .pathway/ directory next to the config file.
func (c *Config) StorePath(dir string) string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	path := c.Store.Path
	if path == "" {
		path = "sessions.db"
	}
	return filepath.Join(dir, configDir, path)
}

// applyEnv loads an optional .env file from dir and overlays recognized
// environment variables onto cfg.
func applyEnv(dir string, cfg *Config) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	if v := os.Getenv(envBackendURL); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv(envUserID); v != "" {
		cfg.User.ID = v
	}
	if v := os.Getenv("PATHWAY_TYPING_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.Chat.TypingDelayMs = ms
		}
	}
}
