package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dmdraft/internal/config"
	"dmdraft/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent run summaries from the audit store",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "how many runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.HistoryPath == "" {
		return fmt.Errorf("no history path configured")
	}

	hs, err := history.Open(cfg.HistoryPath, logger)
	if err != nil {
		return err
	}
	defer hs.Close()

	runs, err := hs.RecentRuns(context.Background(), flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-5s %-20s %-10s %8s %8s %8s\n", "ID", "Started", "Duration", "Drafted", "Skipped", "Errors")
	for _, r := range runs {
		label := r.StartedAt.Format("2006-01-02 15:04")
		if r.DryRun {
			label += " (dry)"
		}
		fmt.Printf("%-5d %-20s %-10s %8d %8d %8d\n",
			r.ID, label, r.FinishedAt.Sub(r.StartedAt).Round(time.Second), r.Drafted, r.Skipped, r.Errors)
	}
	return nil
}
