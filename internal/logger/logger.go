package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/DeRuina/timberjack"
	"github.com/sirupsen/logrus"
)

var (
	// Logger is the shared logger instance used across the application.
	Logger *logrus.Logger

	initialized bool
)

// Config controls the log level and file rotation behaviour.
type Config struct {
	Level            string // "debug", "info", "warn", "error"
	FilePath         string // path to the log file, empty for stdout only
	RotationInterval string // time-based rotation interval, e.g. "24h"
	MaxSizeMB        int    // megabytes before size-based rotation
	MaxBackups       int    // rotated files to retain
	MaxAgeDays       int    // days to retain rotated files
	Compress         bool   // gzip rotated files
}

// Init configures the shared logger. Calling it again after a successful
// initialization is a no-op, so the first loaded config wins.
func Init(cfg Config) error {
	if initialized && Logger != nil {
		return nil
	}
	if Logger == nil {
		Logger = logrus.New()
	}
	Logger.SetOutput(io.Discard)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)
	Logger.SetFormatter(textFormatter())

	var writers []io.Writer
	// Skip stdout when it is already redirected to a file, otherwise the
	// daemon would write every line twice.
	if !stdoutIsFile() {
		writers = append(writers, os.Stdout)
	}

	if cfg.FilePath != "" {
		fileWriter, err := newFileWriter(cfg)
		if err != nil {
			return err
		}
		writers = append(writers, fileWriter)
	}

	Logger.SetOutput(io.MultiWriter(writers...))
	initialized = true
	return nil
}

func newFileWriter(cfg Config) (io.Writer, error) {
	dir := filepath.Dir(cfg.FilePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	maxSize := cfg.MaxSizeMB
	if maxSize == 0 {
		maxSize = 100
	}
	maxBackups := cfg.MaxBackups
	if maxBackups == 0 {
		maxBackups = 3
	}
	maxAge := cfg.MaxAgeDays
	if maxAge == 0 {
		maxAge = 28
	}

	rotation := 24 * time.Hour
	if cfg.RotationInterval != "" {
		var err error
		rotation, err = time.ParseDuration(cfg.RotationInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid rotation_interval: %w", err)
		}
	}

	compression := ""
	if cfg.Compress {
		compression = "gzip"
	}

	return &timberjack.Logger{
		Filename:         cfg.FilePath,
		MaxSize:          maxSize,
		MaxBackups:       maxBackups,
		MaxAge:           maxAge,
		RotationInterval: rotation,
		Compression:      compression,
		LocalTime:        true,
	}, nil
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	}
}

// stdoutIsFile reports whether stdout has been redirected to a regular file.
func stdoutIsFile() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode()&os.ModeCharDevice) == 0 && stat.Mode().IsRegular()
}

// GetLogger returns the shared logger, creating a quiet placeholder when
// Init has not run yet so early callers never get nil.
func GetLogger() *logrus.Logger {
	if Logger == nil {
		Logger = logrus.New()
		Logger.SetOutput(io.Discard)
		Logger.SetLevel(logrus.InfoLevel)
		Logger.SetFormatter(textFormatter())
	}
	return Logger
}
