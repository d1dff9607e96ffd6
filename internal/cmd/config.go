package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"diaroo/internal/config"
)

var configConfigPath string

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE:  runConfig,
	}
	cmd.Flags().StringVarP(&configConfigPath, "config", "c", "", "Path to config file")
	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = "(provider default)"
	}

	fmt.Fprintf(os.Stdout, "Configuration\n")
	fmt.Fprintf(os.Stdout, "=============\n\n")
	fmt.Fprintf(os.Stdout, "LLM:\n")
	fmt.Fprintf(os.Stdout, "  Provider: %s\n", cfg.LLMProvider)
	fmt.Fprintf(os.Stdout, "  Model: %s\n", cfg.Model)
	fmt.Fprintf(os.Stdout, "  API Key: %s\n", maskAPIKey(cfg.APIKey))
	fmt.Fprintf(os.Stdout, "  Endpoint: %s\n", endpoint)
	fmt.Fprintf(os.Stdout, "\nCapture:\n")
	fmt.Fprintf(os.Stdout, "  Screenshot Interval: %ds\n", cfg.ScreenshotIntervalSecs)
	fmt.Fprintf(os.Stdout, "  Batch Interval: %ds\n", cfg.BatchIntervalSecs)
	fmt.Fprintf(os.Stdout, "  Dedup Threshold: %d\n", cfg.DedupThreshold)
	fmt.Fprintf(os.Stdout, "\nStorage:\n")
	fmt.Fprintf(os.Stdout, "  Data Dir: %s\n", cfg.DataDir)
	fmt.Fprintf(os.Stdout, "  Retention Days: %d\n", cfg.RetentionDays)
	fmt.Fprintf(os.Stdout, "  Housekeeping Spec: %s\n", cfg.HousekeepingSpec)
	fmt.Fprintf(os.Stdout, "\nAutomation:\n")
	if cfg.AutoReportEnabled {
		fmt.Fprintf(os.Stdout, "  Auto Report: enabled at %s\n", cfg.AutoReportTime)
	} else {
		fmt.Fprintf(os.Stdout, "  Auto Report: disabled\n")
	}
	if cfg.AutoStartMonitoringEnabled {
		fmt.Fprintf(os.Stdout, "  Scheduled Start: enabled at %s\n", cfg.AutoStartMonitoringTime)
	} else {
		fmt.Fprintf(os.Stdout, "  Scheduled Start: disabled\n")
	}
	fmt.Fprintf(os.Stdout, "\nLogging:\n")
	fmt.Fprintf(os.Stdout, "  Log Path: %s\n", cfg.LogPath)
	fmt.Fprintf(os.Stdout, "  Level: %s\n", cfg.Log.Level)

	return nil
}

func maskAPIKey(key string) string {
	if len(key) == 0 {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
