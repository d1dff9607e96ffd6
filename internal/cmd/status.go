package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"diaroo/internal/config"
	"diaroo/internal/storage"
)

var statusConfigPath string

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current status and today's statistics",
		RunE:  runStatus,
	}
	cmd.Flags().StringVarP(&statusConfigPath, "config", "c", "", "Path to config file")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(statusConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := storage.NewActivityStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize activity store: %w", err)
	}
	defer store.Close()

	screenshots, err := store.GetScreenshotCount()
	if err != nil {
		return fmt.Errorf("failed to count screenshots: %w", err)
	}

	batches, err := store.GetBatches()
	if err != nil {
		return fmt.Errorf("failed to query batches: %w", err)
	}

	lastBatch, err := store.GetLastBatchTime()
	if err != nil {
		return fmt.Errorf("failed to query last batch time: %w", err)
	}
	if lastBatch == "" {
		lastBatch = "(never)"
	}

	fmt.Fprintf(os.Stdout, "Diaroo Status\n")
	fmt.Fprintf(os.Stdout, "=============\n\n")

	if pid, err := readPid(); err == nil && isProcessRunning(pid) {
		fmt.Fprintf(os.Stdout, "Daemon: Running (PID: %d)\n", pid)
	} else {
		fmt.Fprintf(os.Stdout, "Daemon: Not running\n")
	}

	fmt.Fprintf(os.Stdout, "\nToday (%s):\n", store.CurrentDate())
	fmt.Fprintf(os.Stdout, "  Screenshots Recorded: %d\n", screenshots)
	fmt.Fprintf(os.Stdout, "  Batches Summarized: %d\n", len(batches))
	fmt.Fprintf(os.Stdout, "  Last Batch: %s\n", lastBatch)

	if len(batches) > 0 {
		fmt.Fprintf(os.Stdout, "\nRecent Batches:\n")
		shown := 0
		for i := len(batches) - 1; i >= 0 && shown < 5; i-- {
			b := batches[i]
			fmt.Fprintf(os.Stdout, "  %s (%d entries): %s\n", b.Timestamp, b.EntryCount, truncate(b.Summary, 60))
			shown++
		}
	}

	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
