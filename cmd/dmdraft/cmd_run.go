package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dmdraft/internal/browser"
	"dmdraft/internal/config"
	"dmdraft/internal/history"
	"dmdraft/internal/outreach"
	"dmdraft/internal/sheet"
)

var (
	flagDryRun    bool
	flagHeadless  bool
	flagMaxDrafts int
	flagSheet     string
	flagStatus    string
	flagSource    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process eligible accounts and draft messages into their threads",
	RunE:  runOutreach,
}

func init() {
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list the accounts that would be processed, then exit")
	runCmd.Flags().BoolVar(&flagHeadless, "headless", false, "run the browser without a window")
	runCmd.Flags().IntVar(&flagMaxDrafts, "max-drafts", 0, "stop after this many drafted messages")
	runCmd.Flags().StringVar(&flagSheet, "sheet", "", "path to the tracking sheet CSV")
	runCmd.Flags().StringVar(&flagStatus, "status", "", "status value an account must have to be eligible")
	runCmd.Flags().StringVar(&flagSource, "source", "", "only process accounts from this source tag")
}

// loadRunConfig layers command-line flags over the environment config.
func loadRunConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = flagDryRun
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = flagHeadless
	}
	if cmd.Flags().Changed("max-drafts") {
		cfg.MaxDrafts = flagMaxDrafts
	}
	if cmd.Flags().Changed("sheet") {
		cfg.SheetPath = flagSheet
	}
	if cmd.Flags().Changed("status") {
		cfg.StatusFilter = flagStatus
	}
	if cmd.Flags().Changed("source") {
		cfg.SourceFilter = flagSource
	}
	return cfg, cfg.Validate()
}

func runOutreach(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := sheet.NewCSVStore(cfg.SheetPath, logger)
	records, err := store.Read(ctx)
	if err != nil {
		return err
	}
	eligible := sheet.Filter{
		Status: cfg.StatusFilter,
		Source: cfg.SourceFilter,
		Max:    cfg.MaxRows,
	}.Apply(records)
	logger.Info("eligible accounts",
		zap.Int("total_rows", len(records)),
		zap.Int("eligible", len(eligible)))

	if cfg.DryRun {
		fmt.Printf("Dry run: %d account(s) would be processed\n", len(eligible))
		for _, rec := range eligible {
			fmt.Printf("  row %d  %s  (%s)\n", rec.RowIndex, rec.Username, rec.Source)
		}
		return nil
	}
	if len(eligible) == 0 {
		fmt.Println("No eligible accounts.")
		return nil
	}

	bcfg := browser.DefaultConfig()
	bcfg.Headless = cfg.Headless
	bcfg.BrowserBin = cfg.BrowserBin
	bcfg.BaseURL = cfg.BaseURL
	bcfg.CookiePath = cfg.CookiePath
	bcfg.NavigationTimeoutMs = cfg.NavigationTimeoutMs
	bcfg.FindTimeoutMs = cfg.FindTimeoutMs

	mgr := browser.NewManager(bcfg, logger)
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := mgr.Shutdown(context.Background()); err != nil {
			logger.Warn("browser shutdown", zap.Error(err))
		}
	}()

	proc := outreach.NewProcessor(
		browser.NewOpener(bcfg, logger),
		browser.NewProber(bcfg, logger),
		browser.NewProfileNameResolver(bcfg, logger),
		browser.NewDrafter(logger),
		cfg.MessageTemplate,
		cfg.BaseURL,
		logger,
	)
	orch := outreach.NewOrchestrator(mgr, store, proc, cfg.MaxDrafts, cfg.AccountPacing(), logger)

	startedAt := time.Now()
	stats, runErr := orch.Run(ctx, eligible)
	recordHistory(cfg, startedAt, stats)
	printSummary(stats, mgr.RetainedCount())
	return runErr
}

// recordHistory writes the run to the audit store; failures are logged only.
func recordHistory(cfg config.Config, startedAt time.Time, stats *outreach.Stats) {
	if cfg.HistoryPath == "" {
		return
	}
	hs, err := history.Open(cfg.HistoryPath, logger)
	if err != nil {
		logger.Warn("history store unavailable", zap.Error(err))
		return
	}
	defer hs.Close()
	if _, err := hs.RecordRun(context.Background(), startedAt, time.Now(), cfg.DryRun, stats); err != nil {
		logger.Warn("history write failed", zap.Error(err))
	}
}

func printSummary(stats *outreach.Stats, retainedTabs int) {
	fmt.Println("\n=== Run Summary ===")
	fmt.Printf("Processed: %d\n", stats.Total())
	fmt.Printf("Drafted:   %d\n", stats.Drafted)
	fmt.Printf("Skipped:   %d\n", stats.Skipped)
	fmt.Printf("Errors:    %d\n", stats.Errors)
	if retainedTabs > 0 {
		fmt.Printf("\n%d tab(s) left open with drafted messages. Review and send by hand.\n", retainedTabs)
	}
	for _, out := range stats.Outcomes {
		switch out.Status {
		case outreach.OutcomeDrafted:
			fmt.Printf("  ✓ %-20s drafted\n", out.Username)
		case outreach.OutcomeSkipped:
			fmt.Printf("  - %-20s skipped: %s\n", out.Username, out.Reason)
		case outreach.OutcomeFailed:
			fmt.Printf("  ✗ %-20s failed: %s\n", out.Username, out.Err)
		}
	}
}
