package browser

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"dmdraft/internal/outreach"
)

// displayNameSelector is where the profile header renders the account's
// human-readable name, as opposed to its handle.
const displayNameSelector = `header section span[dir="auto"]`

// ProfileNameResolver reads a first name off the profile header for message
// personalization. The name is only trusted when it is present and is not
// just the handle echoed back.
type ProfileNameResolver struct {
	timeout time.Duration
	log     *zap.Logger
}

// NewProfileNameResolver creates the rod-backed name resolver.
func NewProfileNameResolver(cfg Config, log *zap.Logger) *ProfileNameResolver {
	return &ProfileNameResolver{timeout: cfg.FindTimeout(), log: log}
}

// FirstName returns the first token of the profile's display name and
// whether it is trustworthy enough to personalize with.
func (r *ProfileNameResolver) FirstName(ctx context.Context, t outreach.Tab, username string) (string, bool) {
	page, err := pageOf(t)
	if err != nil {
		return "", false
	}

	el, err := page.Context(ctx).Timeout(r.timeout).Element(displayNameSelector)
	if err != nil {
		r.log.Debug("no display name on profile", zap.String("username", username))
		return "", false
	}
	full, err := el.Text()
	if err != nil {
		return "", false
	}

	first := strings.TrimSpace(full)
	if i := strings.IndexAny(first, " \t\n"); i > 0 {
		first = first[:i]
	}
	if first == "" || strings.EqualFold(first, username) {
		return "", false
	}
	return first, true
}
