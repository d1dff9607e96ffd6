package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"diaroo/internal/config"
	"diaroo/internal/storage"
)

var reportsConfigPath string

func NewReportsCmd() *cobra.Command {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse recorded days and their reports",
	}

	reportsCmd.PersistentFlags().StringVarP(&reportsConfigPath, "config", "c", "", "Path to config file")
	reportsCmd.AddCommand(NewReportsListCmd())
	reportsCmd.AddCommand(NewReportsShowCmd())

	return reportsCmd
}

func NewReportsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded days, newest first",
		RunE:  runReportsList,
	}
}

func NewReportsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <date>",
		Short: "Print the report for a day",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportsShow,
	}
}

func runReportsList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(reportsConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shots := storage.NewScreenshotStore(cfg.DataDir)
	dates, err := shots.ListDataDates()
	if err != nil {
		return fmt.Errorf("failed to list recorded days: %w", err)
	}

	if len(dates) == 0 {
		fmt.Fprintln(os.Stdout, "No recorded days yet.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "Recorded Days\n")
	fmt.Fprintf(os.Stdout, "=============\n\n")
	for _, d := range dates {
		marker := ""
		if d.HasReport {
			marker = "  [report]"
		}
		fmt.Fprintf(os.Stdout, "%s%s\n", d.Date, marker)
	}
	return nil
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(reportsConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shots := storage.NewScreenshotStore(cfg.DataDir)
	report, err := shots.ReadReportForDate(args[0])
	if err != nil {
		return fmt.Errorf("no report for %s: %w", args[0], err)
	}

	fmt.Fprintln(os.Stdout, report)
	return nil
}
