package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"diaroo/internal/logger"
)

// Config holds every tunable of the activity journal. Keys are flat so a
// hand-written ~/.diaroo/config.yaml stays short.
type Config struct {
	// LLM settings
	LLMProvider string `mapstructure:"llm_provider"` // "openrouter", "ollama", "claude-code", "codex"
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	APIEndpoint string `mapstructure:"api_endpoint"` // override for HTTP providers, empty for provider default

	// Capture settings
	ScreenshotIntervalSecs int `mapstructure:"screenshot_interval_secs"`
	BatchIntervalSecs      int `mapstructure:"batch_interval_secs"`
	DedupThreshold         int `mapstructure:"dedup_threshold"` // Hamming distance below which a frame is a duplicate

	// Storage settings
	DataDir              string `mapstructure:"data_dir"`
	RetentionDays        int    `mapstructure:"retention_days"`        // 0 disables pruning
	HousekeepingSpec     string `mapstructure:"housekeeping_spec"`     // six-field cron spec, wins over the interval
	HousekeepingInterval string `mapstructure:"housekeeping_interval"` // duration fallback when the cron spec is empty

	// Daily automation
	AutoReportEnabled          bool   `mapstructure:"auto_report_enabled"`
	AutoReportTime             string `mapstructure:"auto_report_time"`
	AutoStartMonitoringEnabled bool   `mapstructure:"auto_start_monitoring_enabled"`
	AutoStartMonitoringTime    string `mapstructure:"auto_start_monitoring_time"`

	// Logging
	LogPath string    `mapstructure:"log_path"`
	Log     LogConfig `mapstructure:"log"`

	configDir string
}

type LogConfig struct {
	Level            string `mapstructure:"level"`
	RotationInterval string `mapstructure:"rotation_interval"`
	MaxSize          int    `mapstructure:"max_size"`
	MaxBackups       int    `mapstructure:"max_backups"`
	MaxAge           int    `mapstructure:"max_age"`
	Compress         bool   `mapstructure:"compress"`
}

var validProviders = map[string]bool{
	"openrouter":  true,
	"ollama":      true,
	"claude-code": true,
	"codex":       true,
}

// Validate checks the tunables that would otherwise break the scheduler or
// the LLM client at runtime.
func (c *Config) Validate() error {
	if c.ScreenshotIntervalSecs <= 0 {
		return fmt.Errorf("screenshot_interval_secs must be positive, got %d", c.ScreenshotIntervalSecs)
	}
	if c.BatchIntervalSecs <= 0 {
		return fmt.Errorf("batch_interval_secs must be positive, got %d", c.BatchIntervalSecs)
	}
	if c.DedupThreshold < 0 || c.DedupThreshold > 64 {
		return fmt.Errorf("dedup_threshold must be between 0 and 64, got %d", c.DedupThreshold)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must be non-negative, got %d", c.RetentionDays)
	}
	if !validProviders[c.LLMProvider] {
		return fmt.Errorf("unknown llm_provider '%s'", c.LLMProvider)
	}
	return nil
}

func (c *Config) resetTunables() {
	c.ScreenshotIntervalSecs = 5
	c.BatchIntervalSecs = 300
	c.DedupThreshold = 5
	c.RetentionDays = 0
	c.LLMProvider = "openrouter"
}

var globalConfig *Config

// Load reads the configuration from the given file, or from the default
// search paths when configPath is empty, and initializes the logger.
func Load(configPath string) (*Config, error) {
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".diaroo"))
		}
	}

	viper.SetDefault("llm_provider", "openrouter")
	viper.SetDefault("api_key", "")
	viper.SetDefault("model", "openai/gpt-4o-mini")
	viper.SetDefault("api_endpoint", "")
	viper.SetDefault("screenshot_interval_secs", 5)
	viper.SetDefault("batch_interval_secs", 300)
	viper.SetDefault("dedup_threshold", 5)
	viper.SetDefault("data_dir", "")
	viper.SetDefault("retention_days", 0)
	viper.SetDefault("housekeeping_spec", "0 0 3 * * *") // 03:00 daily, six-field spec with seconds
	viper.SetDefault("housekeeping_interval", "")
	viper.SetDefault("auto_report_enabled", false)
	viper.SetDefault("auto_report_time", "17:00")
	viper.SetDefault("auto_start_monitoring_enabled", false)
	viper.SetDefault("auto_start_monitoring_time", "09:00")
	viper.SetDefault("log_path", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.rotation_interval", "24h")
	viper.SetDefault("log.max_size", 100)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age", 28)
	viper.SetDefault("log.compress", true)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid configuration: %v. Using default values.\n", err)
		cfg.resetTunables()
	}

	if err := normalizePaths(&cfg); err != nil {
		return nil, fmt.Errorf("failed to normalize paths: %w", err)
	}

	cfg.configDir = resolveConfigDir(configPath)

	if err := initLogger(&cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Get returns the loaded configuration and panics when Load has not run.
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded")
	}
	return globalConfig
}

// ScreenshotInterval returns the capture cadence as a duration.
func (c *Config) ScreenshotInterval() time.Duration {
	return time.Duration(c.ScreenshotIntervalSecs) * time.Second
}

// BatchInterval returns the batch cadence as a duration.
func (c *Config) BatchInterval() time.Duration {
	return time.Duration(c.BatchIntervalSecs) * time.Second
}

// Dir returns the directory holding the config file and the editable prompt
// templates.
func (c *Config) Dir() string {
	return c.configDir
}

// EnsureDataDir creates the data directory tree if it is missing.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}

func normalizePaths(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve base directory: %w", err)
		}
	}
	appDir := filepath.Join(homeDir, ".diaroo")

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(appDir, "data")
	} else {
		cfg.DataDir = expandHome(cfg.DataDir, homeDir)
	}

	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(appDir, "diaroo.log")
	} else {
		cfg.LogPath = expandHome(cfg.LogPath, homeDir)
		// A path without an extension is treated as a directory.
		if filepath.Ext(cfg.LogPath) == "" {
			cfg.LogPath = filepath.Join(cfg.LogPath, "diaroo.log")
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator) {
		return filepath.Join(homeDir, path[2:])
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return path
}

func resolveConfigDir(configPath string) string {
	if configPath != "" {
		return filepath.Dir(configPath)
	}
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return filepath.Dir(configFile)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".diaroo")
	}
	return "."
}

func initLogger(cfg *Config) error {
	return logger.Init(logger.Config{
		Level:            cfg.Log.Level,
		FilePath:         cfg.LogPath,
		RotationInterval: cfg.Log.RotationInterval,
		MaxSizeMB:        cfg.Log.MaxSize,
		MaxBackups:       cfg.Log.MaxBackups,
		MaxAgeDays:       cfg.Log.MaxAge,
		Compress:         cfg.Log.Compress,
	})
}
