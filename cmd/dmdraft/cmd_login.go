package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dmdraft/internal/browser"
	"dmdraft/internal/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Open the platform and save the session once you have logged in",
	Long: `login opens a browser window on the platform's sign-in page and waits
for you to complete the login by hand. Once the login wall clears, the
session cookies are saved so that 'dmdraft run' starts authenticated.`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bcfg := browser.DefaultConfig()
	bcfg.Headless = false // the operator has to see the login form
	bcfg.BrowserBin = cfg.BrowserBin
	bcfg.BaseURL = cfg.BaseURL
	bcfg.CookiePath = cfg.CookiePath

	mgr := browser.NewManager(bcfg, logger)
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := mgr.Shutdown(context.Background()); err != nil {
			logger.Warn("browser shutdown", zap.Error(err))
		}
	}()

	fmt.Println("Complete the login in the browser window...")
	if err := mgr.SeedLogin(ctx); err != nil {
		return fmt.Errorf("login not completed: %w", err)
	}
	fmt.Printf("Session saved to %s\n", cfg.CookiePath)
	return nil
}
