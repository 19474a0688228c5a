package outreach

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dmdraft/internal/draft"
	"dmdraft/internal/sheet"
)

// authGateMarker shows up in the URL when the platform bounces an
// unauthenticated visitor to its login wall.
const authGateMarker = "/accounts/login"

// Processor runs one account through the pipeline:
// navigate -> open thread -> probe conversation -> draft -> classify.
// Every fault is caught at this boundary and mapped to a Failed outcome, so
// one account can never abort the run.
type Processor struct {
	opener   ThreadOpener
	prober   ConversationProber
	names    NameResolver
	drafter  Drafter
	template string
	baseURL  string
	log      *zap.Logger
}

// NewProcessor wires the per-account pipeline.
func NewProcessor(opener ThreadOpener, prober ConversationProber, names NameResolver, drafter Drafter, template, baseURL string, log *zap.Logger) *Processor {
	return &Processor{
		opener:   opener,
		prober:   prober,
		names:    names,
		drafter:  drafter,
		template: template,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
	}
}

// ProfileURL is where processing for a username starts.
func (p *Processor) ProfileURL(username string) string {
	return p.baseURL + "/" + username + "/"
}

// Process takes an account to exactly one of the three terminal outcomes.
func (p *Processor) Process(ctx context.Context, t Tab, rec sheet.AccountRecord) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic while processing account",
				zap.String("username", rec.Username), zap.Any("panic", r))
			out = FailedOutcome(rec, fmt.Sprintf("unexpected fault: %v", r))
		}
	}()

	log := p.log.With(zap.String("username", rec.Username), zap.Int("row", rec.RowIndex))

	if err := t.Navigate(ctx, p.ProfileURL(rec.Username)); err != nil {
		return FailedOutcome(rec, fmt.Sprintf("navigate: %v", err))
	}
	loc, err := t.Location(ctx)
	if err != nil {
		return FailedOutcome(rec, fmt.Sprintf("read location: %v", err))
	}
	if strings.Contains(loc, authGateMarker) {
		log.Warn("hit authentication gate", zap.String("url", loc))
		return FailedOutcome(rec, ErrAuthWall.Error())
	}

	strategy, err := p.opener.Open(ctx, t)
	if err != nil {
		return FailedOutcome(rec, fmt.Sprintf("open thread: %v", err))
	}
	log.Debug("thread opened", zap.String("strategy", strategy))

	convo, err := p.prober.Probe(ctx, t)
	if err != nil {
		return FailedOutcome(rec, fmt.Sprintf("probe conversation: %v", err))
	}
	if convo.HasHistory {
		// Hard rule: never draft into a thread that already has messages.
		log.Info("conversation exists, skipping", zap.Int("messages", convo.MessageCount))
		return SkippedOutcome(rec, fmt.Sprintf("existing conversation (%d messages)", convo.MessageCount))
	}

	name, resolved := p.names.FirstName(ctx, t, rec.Username)
	res := p.drafter.Draft(ctx, t, draft.Request{
		Template:     p.template,
		FirstName:    name,
		NameResolved: resolved,
	})
	if !res.Succeeded {
		log.Warn("draft failed", zap.String("reason", res.Reason))
		return FailedOutcome(rec, res.Reason)
	}

	log.Info("message drafted", zap.String("first_name", res.FirstName))
	return DraftedOutcome(rec, res.ComposedMessage)
}
