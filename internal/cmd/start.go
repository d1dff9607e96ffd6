package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"diaroo/internal/config"
	"diaroo/internal/digest"
	"diaroo/internal/llm"
	"diaroo/internal/logger"
	"diaroo/internal/scheduler"
	"diaroo/internal/storage"
)

var configPath string

func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start activity monitoring",
		RunE:  runStart,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.NewActivityStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize activity store: %w", err)
	}
	defer store.Close()

	shots := storage.NewScreenshotStore(cfg.DataDir)
	llmClient := llm.New(cfg.LLMProvider, cfg.APIKey, cfg.Model, cfg.APIEndpoint)
	pipeline := digest.NewPipeline(store, shots, llmClient, cfg.Dir())

	notifier := scheduler.NewLogNotifier()
	monitor := scheduler.NewMonitor(cfg, store, shots, pipeline, notifier)
	session := scheduler.NewSessionManager(monitor, notifier)

	if err := session.Start(); err != nil {
		return fmt.Errorf("failed to start monitoring: %w", err)
	}

	// The daily triggers outlive monitoring sessions (they stop and start
	// sessions themselves), so they get their own app-lifetime stop signal.
	appStop := make(chan struct{})

	if cfg.AutoReportEnabled {
		hour, minute := scheduler.ParseClock(cfg.AutoReportTime, 17, 0)
		trigger := scheduler.NewDailyTrigger("Auto-report", hour, minute, func() error {
			today := time.Now().Format("2006-01-02")
			path, err := pipeline.GenerateDigestForDate(context.Background(), today)
			if err != nil {
				return err
			}
			notifier.DigestReady(path)
			// A report marks end-of-session.
			if session.StopIfRunning() {
				logger.GetLogger().Info("Monitoring stopped after auto-report generation")
			}
			return nil
		})
		go trigger.Run(appStop)
	}

	if cfg.AutoStartMonitoringEnabled {
		hour, minute := scheduler.ParseClock(cfg.AutoStartMonitoringTime, 9, 0)
		trigger := scheduler.NewDailyTrigger("Scheduled monitoring start", hour, minute, func() error {
			if session.Running() {
				logger.GetLogger().Info("Scheduled monitoring trigger skipped: already monitoring")
				return nil
			}
			if err := session.Start(); err != nil {
				return err
			}
			logger.GetLogger().Info("Monitoring started by scheduled trigger")
			return nil
		})
		go trigger.Run(appStop)
	}

	var housekeeper scheduler.Scheduler
	if cfg.RetentionDays > 0 {
		housekeeper, err = scheduler.NewScheduler(cfg.HousekeepingInterval, cfg.HousekeepingSpec)
		if err != nil {
			return fmt.Errorf("failed to create housekeeping scheduler: %w", err)
		}

		pruner := storage.NewHousekeeper(cfg.DataDir, cfg.RetentionDays)
		pruneTask := func() error {
			_, err := pruner.Prune()
			return err
		}
		if err := housekeeper.Start(pruneTask); err != nil {
			return fmt.Errorf("failed to start housekeeping scheduler: %w", err)
		}
		logger.GetLogger().Infof("Housekeeping scheduler started (spec: %s, retention: %d days)",
			cfg.HousekeepingSpec, cfg.RetentionDays)
	}

	logger.GetLogger().Info("Diaroo started. Press Ctrl+C to stop.")
	logger.GetLogger().Infof("Screenshot interval: %ds, Batch interval: %ds, Dedup threshold: %d",
		cfg.ScreenshotIntervalSecs, cfg.BatchIntervalSecs, cfg.DedupThreshold)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.GetLogger().Info("Stopping...")
	close(appStop)
	session.StopIfRunning()
	if housekeeper != nil {
		if err := housekeeper.Stop(); err != nil {
			return fmt.Errorf("failed to stop housekeeping scheduler: %w", err)
		}
	}
	logger.GetLogger().Info("Stopped.")

	return nil
}
