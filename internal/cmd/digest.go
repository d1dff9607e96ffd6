package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"diaroo/internal/config"
	"diaroo/internal/digest"
	"diaroo/internal/llm"
	"diaroo/internal/storage"
)

var (
	digestConfigPath string
	digestDate       string
)

func NewDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Generate the daily markdown report",
		RunE:  runDigest,
	}

	cmd.Flags().StringVarP(&digestConfigPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&digestDate, "date", "d", "", "Date to generate (YYYY-MM-DD, default today)")

	return cmd
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(digestConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	date := digestDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date '%s', expected YYYY-MM-DD", date)
	}

	store, err := storage.NewActivityStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize activity store: %w", err)
	}
	defer store.Close()

	shots := storage.NewScreenshotStore(cfg.DataDir)
	llmClient := llm.New(cfg.LLMProvider, cfg.APIKey, cfg.Model, cfg.APIEndpoint)
	pipeline := digest.NewPipeline(store, shots, llmClient, cfg.Dir())

	path, err := pipeline.GenerateDigestForDate(context.Background(), date)
	if err != nil {
		return fmt.Errorf("failed to generate digest: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Report saved to %s\n", path)
	return nil
}
