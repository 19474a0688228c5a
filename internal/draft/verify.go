package draft

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// Verifier confirms the thread input actually holds the composed message.
// The hosting UI can truncate, reformat, or silently reject injected text,
// so reading the rendered content back is the only reliable success signal.
type Verifier struct {
	pacing Pacing
	jitter func(min, max time.Duration) time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewVerifier creates a verifier that lets the page settle before reading.
func NewVerifier(p Pacing) *Verifier {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Verifier{
		pacing: p,
		jitter: func(min, max time.Duration) time.Duration { return jitterBetween(rng, min, max) },
		sleep:  sleepCtx,
	}
}

// Verify reads the element's rendered text after a settling pause and
// compares it, trimmed, against the composed message. It returns the
// observed text alongside the match result so mismatches can be reported
// with both sides.
func (v *Verifier) Verify(ctx context.Context, in Input, composed string) (string, bool, error) {
	if err := v.sleep(ctx, v.jitter(v.pacing.SettleMin, v.pacing.SettleMax)); err != nil {
		return "", false, err
	}
	observed, err := in.Text(ctx)
	if err != nil {
		return "", false, err
	}
	match := strings.TrimSpace(observed) == strings.TrimSpace(composed)
	return observed, match, nil
}
