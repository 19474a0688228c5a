package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"
)

func TestNewLauncherKeepsBrowserAliveAfterExit(t *testing.T) {
	l := newLauncher(DefaultConfig())
	assert.False(t, l.Has(flags.Leakless),
		"the browser must outlive the process so retained tabs stay open for review")
}

func TestNewLauncherHonorsConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Headless = true
	cfg.BrowserBin = "/usr/bin/chromium"

	l := newLauncher(cfg)
	assert.True(t, l.Has(flags.Headless))
	assert.Equal(t, "/usr/bin/chromium", l.Get(flags.Bin))
}
