package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"dmdraft/internal/outreach"
)

// openStrategy is one way of getting from a profile page into its
// direct-message thread.
type openStrategy struct {
	name string
	find func(page *rod.Page) (*rod.Element, error)
}

// Opener opens a DM thread from a profile page by trying its strategies in
// order and clicking the first control that shows up.
type Opener struct {
	timeout time.Duration
	log     *zap.Logger
}

// NewOpener creates the rod-backed thread opener.
func NewOpener(cfg Config, log *zap.Logger) *Opener {
	return &Opener{timeout: cfg.FindTimeout(), log: log}
}

func openStrategies() []openStrategy {
	return []openStrategy{
		{
			name: "message-button",
			find: func(page *rod.Page) (*rod.Element, error) {
				return page.ElementR(`div[role="button"]`, `/^Message$/`)
			},
		},
		{
			name: "direct-link",
			find: func(page *rod.Page) (*rod.Element, error) {
				return page.Element(`a[href*="/direct/t/"]`)
			},
		},
		{
			name: "header-message-button",
			find: func(page *rod.Page) (*rod.Element, error) {
				return page.ElementR(`header button`, `/^Message$/`)
			},
		},
	}
}

// Open clicks through to the thread and waits for the thread view to render.
// It reports the name of the strategy that succeeded.
func (o *Opener) Open(ctx context.Context, t outreach.Tab) (string, error) {
	page, err := pageOf(t)
	if err != nil {
		return "", err
	}

	var misses []string
	for _, s := range openStrategies() {
		el, err := s.find(page.Context(ctx).Timeout(o.timeout))
		if err != nil {
			misses = append(misses, s.name)
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			o.log.Debug("thread-open click failed", zap.String("strategy", s.name), zap.Error(err))
			misses = append(misses, s.name)
			continue
		}
		if err := o.waitThreadView(ctx, page); err != nil {
			misses = append(misses, s.name)
			continue
		}
		return s.name, nil
	}
	return "", fmt.Errorf("no thread-open strategy succeeded (tried %s)", strings.Join(misses, ", "))
}

// waitThreadView blocks until the conversation surface is on screen.
func (o *Opener) waitThreadView(ctx context.Context, page *rod.Page) error {
	_, err := page.Context(ctx).Timeout(o.timeout).Element(`div[role="textbox"], textarea[placeholder="Message..."]`)
	if err != nil {
		return fmt.Errorf("thread view did not appear: %w", err)
	}
	return nil
}
