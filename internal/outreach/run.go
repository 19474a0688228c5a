package outreach

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dmdraft/internal/sheet"
)

// dateSentLayout is how drafted timestamps land in the sheet.
const dateSentLayout = "2006-01-02 15:04"

// AccountProcessor is what the orchestrator runs per account.
type AccountProcessor interface {
	Process(ctx context.Context, t Tab, rec sheet.AccountRecord) Outcome
}

// Orchestrator walks the eligible account list strictly sequentially: one
// tab per account, outcome persisted after each, tab retained or released by
// outcome, paced between accounts, halting once the drafted cap is reached.
type Orchestrator struct {
	tabs      TabAllocator
	store     Store
	proc      AccountProcessor
	maxDrafts int
	limiter   *rate.Limiter
	now       func() time.Time
	log       *zap.Logger
}

// NewOrchestrator creates a run orchestrator. maxDrafts must be positive;
// pacing <= 0 disables the inter-account delay.
func NewOrchestrator(tabs TabAllocator, store Store, proc AccountProcessor, maxDrafts int, pacing time.Duration, log *zap.Logger) *Orchestrator {
	var limiter *rate.Limiter
	if pacing > 0 {
		limiter = rate.NewLimiter(rate.Every(pacing), 1)
	}
	return &Orchestrator{
		tabs:      tabs,
		store:     store,
		proc:      proc,
		maxDrafts: maxDrafts,
		limiter:   limiter,
		now:       time.Now,
		log:       log,
	}
}

// Run processes the accounts in order and returns the aggregated statistics.
// The returned error is non-nil only when the run as a whole had to stop
// (context cancelled between accounts); per-account failures are outcomes.
func (o *Orchestrator) Run(ctx context.Context, accounts []sheet.AccountRecord) (*Stats, error) {
	stats := &Stats{}

	for _, rec := range accounts {
		if o.maxDrafts > 0 && stats.Drafted >= o.maxDrafts {
			o.log.Info("drafted cap reached, stopping",
				zap.Int("cap", o.maxDrafts), zap.Int("remaining", len(accounts)-stats.Total()))
			break
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		out := o.processOne(ctx, rec)
		stats.Add(out)
		o.persist(ctx, out, stats)

		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return stats, err
			}
		}
	}

	o.log.Info("run complete",
		zap.Int("total", stats.Total()),
		zap.Int("drafted", stats.Drafted),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors))
	return stats, nil
}

// processOne owns the tab for exactly one account and applies the retention
// policy once the account reaches a terminal state.
func (o *Orchestrator) processOne(ctx context.Context, rec sheet.AccountRecord) Outcome {
	tab, err := o.tabs.Open(ctx)
	if err != nil {
		o.log.Error("open tab failed", zap.String("username", rec.Username), zap.Error(err))
		return FailedOutcome(rec, "open tab: "+err.Error())
	}

	out := o.proc.Process(ctx, tab, rec)

	// Drafted keeps its tab open for manual follow-up; everything else closes.
	if out.Status == OutcomeDrafted {
		o.tabs.Retain(tab)
	} else {
		o.tabs.Release(tab)
	}
	return out
}

// persist writes the outcome to the sheet. A write failure is counted as an
// error but never downgrades the outcome already determined.
func (o *Orchestrator) persist(ctx context.Context, out Outcome, stats *Stats) {
	var dateSent, message, status string
	switch out.Status {
	case OutcomeDrafted:
		dateSent = o.now().Format(dateSentLayout)
		message = out.Message
		status = sheet.StatusDrafted
	case OutcomeSkipped:
		status = sheet.StatusConvoExists
	case OutcomeFailed:
		status = sheet.StatusFailed
	}

	if err := o.store.UpdateOutcome(ctx, out.RowIndex, dateSent, message, status); err != nil {
		o.log.Error("persist outcome failed",
			zap.String("username", out.Username),
			zap.Int("row", out.RowIndex),
			zap.Error(err))
		stats.NotePersistenceError()
	}
}
