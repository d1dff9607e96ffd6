package config

import (
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		LLMProvider:            "openrouter",
		ScreenshotIntervalSecs: 5,
		BatchIntervalSecs:      300,
		DedupThreshold:         5,
		RetentionDays:          0,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero screenshot interval",
			mutate:  func(c *Config) { c.ScreenshotIntervalSecs = 0 },
			wantErr: true,
		},
		{
			name:    "negative batch interval",
			mutate:  func(c *Config) { c.BatchIntervalSecs = -1 },
			wantErr: true,
		},
		{
			name:    "negative dedup threshold",
			mutate:  func(c *Config) { c.DedupThreshold = -1 },
			wantErr: true,
		},
		{
			name:    "dedup threshold above hash width",
			mutate:  func(c *Config) { c.DedupThreshold = 65 },
			wantErr: true,
		},
		{
			name:    "threshold zero disables dedup and is valid",
			mutate:  func(c *Config) { c.DedupThreshold = 0 },
			wantErr: false,
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.RetentionDays = -3 },
			wantErr: true,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLMProvider = "gemini" },
			wantErr: true,
		},
		{
			name:    "ollama provider",
			mutate:  func(c *Config) { c.LLMProvider = "ollama" },
			wantErr: false,
		},
		{
			name:    "claude-code provider",
			mutate:  func(c *Config) { c.LLMProvider = "claude-code" },
			wantErr: false,
		},
		{
			name:    "codex provider",
			mutate:  func(c *Config) { c.LLMProvider = "codex" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResetTunables(t *testing.T) {
	cfg := Config{
		LLMProvider:            "bogus",
		ScreenshotIntervalSecs: -1,
		BatchIntervalSecs:      0,
		DedupThreshold:         99,
		RetentionDays:          -5,
	}
	cfg.resetTunables()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("reset config should validate, got %v", err)
	}
	if cfg.ScreenshotIntervalSecs != 5 {
		t.Errorf("ScreenshotIntervalSecs = %d, want 5", cfg.ScreenshotIntervalSecs)
	}
	if cfg.BatchIntervalSecs != 300 {
		t.Errorf("BatchIntervalSecs = %d, want 300", cfg.BatchIntervalSecs)
	}
	if cfg.LLMProvider != "openrouter" {
		t.Errorf("LLMProvider = %q, want openrouter", cfg.LLMProvider)
	}
}

func TestIntervalHelpers(t *testing.T) {
	cfg := Config{ScreenshotIntervalSecs: 5, BatchIntervalSecs: 300}

	if got := cfg.ScreenshotInterval(); got != 5*time.Second {
		t.Errorf("ScreenshotInterval() = %v, want 5s", got)
	}
	if got := cfg.BatchInterval(); got != 5*time.Minute {
		t.Errorf("BatchInterval() = %v, want 5m", got)
	}
}

func TestExpandHome(t *testing.T) {
	home := filepath.Join("/home", "tester")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"tilde only", "~", home},
		{"tilde prefix", "~/data", filepath.Join(home, "data")},
		{"absolute untouched", "/var/lib/diaroo", "/var/lib/diaroo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandHome(tt.path, home); got != tt.want {
				t.Errorf("expandHome(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
