// Package browser drives the Chromium instance behind an outreach run: one
// launched browser, one page per account, cookie-seeded login sessions, and
// the rod-backed implementations of the pipeline's collaborator ports.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dmdraft/internal/outreach"
)

// Config holds browser configuration.
type Config struct {
	Headless            bool   `json:"headless"`
	BrowserBin          string `json:"browser_bin"`
	BaseURL             string `json:"base_url"`
	CookiePath          string `json:"cookie_path"`
	ViewportWidth       int    `json:"viewport_width"`
	ViewportHeight      int    `json:"viewport_height"`
	NavigationTimeoutMs int    `json:"navigation_timeout_ms"`
	FindTimeoutMs       int    `json:"find_timeout_ms"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:            false,
		BaseURL:             "https://www.instagram.com",
		ViewportWidth:       1280,
		ViewportHeight:      900,
		NavigationTimeoutMs: 30000,
		FindTimeoutMs:       5000,
	}
}

// GetViewportWidth returns viewport width.
func (c Config) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1280
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c Config) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 900
	}
	return c.ViewportHeight
}

// NavigationTimeout bounds page navigations and load waits.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// FindTimeout bounds element lookups for the opener and prober.
func (c Config) FindTimeout() time.Duration {
	if c.FindTimeoutMs == 0 {
		return 5 * time.Second
	}
	return time.Duration(c.FindTimeoutMs) * time.Millisecond
}

// Tab is one page owned by a single account while it is processed.
type Tab struct {
	id   string
	page *rod.Page
	nav  time.Duration
}

// ID returns the tab's identity.
func (t *Tab) ID() string { return t.id }

// Navigate drives the tab to url and waits for the load event.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	page := t.page.Context(ctx).Timeout(t.nav)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

// Location returns the URL the tab actually ended up on, which is how an
// authentication redirect is detected.
func (t *Tab) Location(ctx context.Context) (string, error) {
	info, err := t.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("tab info: %w", err)
	}
	return info.URL, nil
}

// Manager owns the launched browser and tracks tab ownership: tabs move from
// the processing set to either the retained set or are destroyed.
type Manager struct {
	cfg Config
	log *zap.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	open     map[string]*Tab
	retained map[string]*Tab
}

// newLauncher builds the launch configuration. The leakless watchdog is
// disabled: it would kill Chromium the moment this process exits, and
// retained tabs have to stay on screen after the run returns.
func newLauncher(cfg Config) *launcher.Launcher {
	l := launcher.New().Headless(cfg.Headless).Leakless(false)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	return l
}

// NewManager creates a manager; Start must be called before Open.
func NewManager(cfg Config, log *zap.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		log:      log,
		open:     make(map[string]*Tab),
		retained: make(map[string]*Tab),
	}
}

// Start launches Chromium, connects over CDP, and restores any saved login
// cookies into the browser context.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return nil
	}

	controlURL, err := newLauncher(m.cfg).Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}
	m.browser = browser

	if err := m.restoreCookiesLocked(); err != nil {
		// A missing cookie jar is normal before the first login.
		m.log.Warn("cookie restore skipped", zap.Error(err))
	}
	m.log.Info("browser started", zap.Bool("headless", m.cfg.Headless))
	return nil
}

// Open creates a fresh tab and hands ownership to the caller.
func (m *Manager) Open(ctx context.Context) (outreach.Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil, fmt.Errorf("browser not started")
	}

	page, err := m.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		m.log.Warn("failed to set viewport", zap.Error(err))
	}

	tab := &Tab{
		id:   uuid.NewString(),
		page: page,
		nav:  m.cfg.NavigationTimeout(),
	}
	m.open[tab.id] = tab
	return tab, nil
}

// Retain transfers a tab into the open-for-inspection set. It stays open
// until the operator closes it by hand.
func (m *Manager) Retain(t outreach.Tab) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, ok := m.open[t.ID()]
	if !ok {
		return
	}
	delete(m.open, tab.id)
	m.retained[tab.id] = tab
	m.log.Debug("tab retained", zap.String("tab", tab.id))
}

// Release destroys a tab whose account is done with it.
func (m *Manager) Release(t outreach.Tab) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, ok := m.open[t.ID()]
	if !ok {
		return
	}
	delete(m.open, tab.id)
	if err := tab.page.Close(); err != nil {
		m.log.Warn("close tab", zap.String("tab", tab.id), zap.Error(err))
	}
}

// RetainedCount reports how many tabs were kept open for inspection.
func (m *Manager) RetainedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.retained)
}

// Shutdown closes every tab still in the processing set. When tabs were
// retained, the browser itself is left running so the operator can review
// the drafted messages; otherwise it is closed.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, tab := range m.open {
		_ = tab.page.Close()
		delete(m.open, id)
	}

	if m.browser == nil {
		return nil
	}
	if len(m.retained) > 0 {
		m.log.Info("leaving browser open for inspection", zap.Int("retained_tabs", len(m.retained)))
		return nil
	}
	err := m.browser.Close()
	m.browser = nil
	return err
}

// pageOf unwraps the concrete tab handed out by this manager.
func pageOf(t outreach.Tab) (*rod.Page, error) {
	tab, ok := t.(*Tab)
	if !ok || tab.page == nil {
		return nil, fmt.Errorf("browser: tab %s has no page", t.ID())
	}
	return tab.page, nil
}

// restoreCookiesLocked loads the saved cookie jar into the browser.
func (m *Manager) restoreCookiesLocked() error {
	if m.cfg.CookiePath == "" {
		return nil
	}
	data, err := os.ReadFile(m.cfg.CookiePath)
	if err != nil {
		return err
	}
	var params []*proto.NetworkCookieParam
	if err := json.Unmarshal(data, &params); err != nil {
		return fmt.Errorf("decode cookie jar: %w", err)
	}
	if len(params) == 0 {
		return nil
	}
	if err := m.browser.SetCookies(params); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	m.log.Info("session cookies restored", zap.Int("cookies", len(params)))
	return nil
}

// saveCookies snapshots the page's cookies to the configured jar.
func (m *Manager) saveCookies(page *rod.Page) error {
	if m.cfg.CookiePath == "" {
		return fmt.Errorf("no cookie path configured")
	}
	res, err := proto.NetworkGetCookies{}.Call(page)
	if err != nil {
		return fmt.Errorf("get cookies: %w", err)
	}
	params := make([]*proto.NetworkCookieParam, 0, len(res.Cookies))
	for _, c := range res.Cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite,
			Priority: c.Priority,
		})
	}
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.cfg.CookiePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.cfg.CookiePath, data, 0o600)
}
