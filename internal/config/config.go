// Package config builds the explicit configuration value object the run is
// wired with. Settings come from process environment variables, optionally
// seeded from a .env file; no other component reads ambient process state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is constructed once at startup and passed by value into the
// orchestrators.
type Config struct {
	// Sheet
	SheetPath    string
	StatusFilter string
	SourceFilter string
	MaxRows      int

	// Messaging
	MessageTemplate string
	MaxDrafts       int
	DryRun          bool

	// Browser
	Headless            bool
	BrowserBin          string
	BaseURL             string
	CookiePath          string
	NavigationTimeoutMs int
	FindTimeoutMs       int

	// Run
	AccountPacingMs int
	HistoryPath     string
}

// Default returns the built-in defaults applied before the environment is
// consulted.
func Default() Config {
	return Config{
		StatusFilter:        "Ready",
		MaxRows:             50,
		MaxDrafts:           10,
		BaseURL:             "https://www.instagram.com",
		CookiePath:          ".dmdraft/cookies.json",
		HistoryPath:         ".dmdraft/history.db",
		NavigationTimeoutMs: 30000,
		FindTimeoutMs:       5000,
		AccountPacingMs:     8000,
	}
}

// Load reads configuration from the environment on top of the defaults.
// A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Default()
	c.SheetPath = getStr("DMDRAFT_SHEET", c.SheetPath)
	c.StatusFilter = getStr("DMDRAFT_STATUS_FILTER", c.StatusFilter)
	c.SourceFilter = getStr("DMDRAFT_SOURCE_FILTER", c.SourceFilter)
	c.MessageTemplate = getStr("DMDRAFT_MESSAGE_TEMPLATE", c.MessageTemplate)
	c.BrowserBin = getStr("DMDRAFT_BROWSER_BIN", c.BrowserBin)
	c.BaseURL = getStr("DMDRAFT_BASE_URL", c.BaseURL)
	c.CookiePath = getStr("DMDRAFT_COOKIE_PATH", c.CookiePath)
	c.HistoryPath = getStr("DMDRAFT_HISTORY_PATH", c.HistoryPath)

	var err error
	if c.MaxRows, err = getInt("DMDRAFT_MAX_ROWS", c.MaxRows); err != nil {
		return c, err
	}
	if c.MaxDrafts, err = getInt("DMDRAFT_MAX_DRAFTS", c.MaxDrafts); err != nil {
		return c, err
	}
	if c.NavigationTimeoutMs, err = getInt("DMDRAFT_NAV_TIMEOUT_MS", c.NavigationTimeoutMs); err != nil {
		return c, err
	}
	if c.FindTimeoutMs, err = getInt("DMDRAFT_FIND_TIMEOUT_MS", c.FindTimeoutMs); err != nil {
		return c, err
	}
	if c.AccountPacingMs, err = getInt("DMDRAFT_ACCOUNT_PACING_MS", c.AccountPacingMs); err != nil {
		return c, err
	}
	if c.DryRun, err = getBool("DMDRAFT_DRY_RUN", c.DryRun); err != nil {
		return c, err
	}
	if c.Headless, err = getBool("DMDRAFT_HEADLESS", c.Headless); err != nil {
		return c, err
	}
	return c, nil
}

// Validate reports the fatal configuration errors that abort a run before
// any account is processed.
func (c Config) Validate() error {
	if c.SheetPath == "" {
		return fmt.Errorf("config: sheet path is required (DMDRAFT_SHEET)")
	}
	if c.MessageTemplate == "" {
		return fmt.Errorf("config: message template is required (DMDRAFT_MESSAGE_TEMPLATE)")
	}
	if c.MaxDrafts <= 0 {
		return fmt.Errorf("config: max drafts must be positive, got %d", c.MaxDrafts)
	}
	if c.MaxRows <= 0 {
		return fmt.Errorf("config: max rows must be positive, got %d", c.MaxRows)
	}
	if c.StatusFilter == "" {
		return fmt.Errorf("config: status filter is required")
	}
	return nil
}

// AccountPacing is the minimum delay between two accounts.
func (c Config) AccountPacing() time.Duration {
	if c.AccountPacingMs <= 0 {
		return 0
	}
	return time.Duration(c.AccountPacingMs) * time.Millisecond
}

func getStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s=%q is not an integer", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s=%q is not a boolean", key, v)
	}
	return b, nil
}
