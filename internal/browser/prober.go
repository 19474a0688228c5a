package browser

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dmdraft/internal/outreach"
)

// messageRowSelector matches rendered messages inside the thread view. The
// platform marks each bubble with a row role inside the conversation grid.
const messageRowSelector = `div[role="grid"] div[role="row"]`

// Prober reports whether an open thread already has message history.
type Prober struct {
	timeout time.Duration
	log     *zap.Logger
}

// NewProber creates the rod-backed conversation prober.
func NewProber(cfg Config, log *zap.Logger) *Prober {
	return &Prober{timeout: cfg.FindTimeout(), log: log}
}

// Probe counts message rows in the thread view. Zero rows means the thread
// is fresh and safe to draft into.
func (p *Prober) Probe(ctx context.Context, t outreach.Tab) (outreach.Conversation, error) {
	page, err := pageOf(t)
	if err != nil {
		return outreach.Conversation{}, err
	}

	// Let the history pane finish its initial render before counting.
	if err := page.Context(ctx).Timeout(p.timeout).WaitStable(300 * time.Millisecond); err != nil {
		p.log.Debug("thread view did not stabilize", zap.Error(err))
	}

	rows, err := page.Context(ctx).Elements(messageRowSelector)
	if err != nil {
		return outreach.Conversation{}, fmt.Errorf("count message rows: %w", err)
	}

	convo := outreach.Conversation{
		HasHistory:   len(rows) > 0,
		MessageCount: len(rows),
	}
	p.log.Debug("conversation probed", zap.Int("messages", convo.MessageCount))
	return convo, nil
}
