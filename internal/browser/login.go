package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// loginPollInterval is how often SeedLogin re-checks whether the operator
// has finished signing in.
const loginPollInterval = 2 * time.Second

// SeedLogin opens the platform in a tab and waits for the operator to
// complete the login flow by hand, then snapshots the session cookies to the
// configured jar so later runs start authenticated.
func (m *Manager) SeedLogin(ctx context.Context) error {
	m.mu.Lock()
	browser := m.browser
	m.mu.Unlock()
	if browser == nil {
		return fmt.Errorf("browser not started")
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: m.cfg.BaseURL + "/accounts/login/"})
	if err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.Timeout(m.cfg.NavigationTimeout()).WaitLoad(); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}
	m.log.Info("waiting for operator to finish logging in")

	ticker := time.NewTicker(loginPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		info, err := page.Context(ctx).Info()
		if err != nil {
			return fmt.Errorf("poll login page: %w", err)
		}
		if strings.Contains(info.URL, "/accounts/login") {
			continue
		}

		// Off the login wall: the session is live.
		if err := m.saveCookies(page); err != nil {
			return fmt.Errorf("save session cookies: %w", err)
		}
		m.log.Info("login session saved", zap.String("cookie_path", m.cfg.CookiePath))
		return nil
	}
}
