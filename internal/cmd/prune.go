package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"diaroo/internal/config"
	"diaroo/internal/storage"
)

var pruneConfigPath string

func NewPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete day directories older than the retention window",
		RunE:  runPrune,
	}
	cmd.Flags().StringVarP(&pruneConfigPath, "config", "c", "", "Path to config file")
	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(pruneConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.RetentionDays <= 0 {
		fmt.Fprintln(os.Stdout, "Retention is disabled (retention_days = 0), nothing to prune.")
		return nil
	}

	pruner := storage.NewHousekeeper(cfg.DataDir, cfg.RetentionDays)
	removed, err := pruner.Prune()
	if err != nil {
		return fmt.Errorf("failed to prune: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Pruned %d day directories older than %d days.\n", removed, cfg.RetentionDays)
	return nil
}
