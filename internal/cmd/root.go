package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diaroo",
		Short: "Diaroo - automatic desktop activity journal",
		Long:  "An activity journal that captures screenshots, deduplicates them, summarizes them with an LLM, and writes a daily markdown report",
	}

	rootCmd.AddCommand(NewStartCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewDigestCmd())
	rootCmd.AddCommand(NewReportsCmd())
	rootCmd.AddCommand(NewPruneCmd())
	rootCmd.AddCommand(NewDaemonCmd())

	return rootCmd
}
