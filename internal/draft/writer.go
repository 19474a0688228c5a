package draft

import (
	"context"
	"math/rand"
	"time"
)

// typedPrefixRunes is how much of the message gets typed one keystroke at a
// time before the remainder is inserted in bulk.
const typedPrefixRunes = 10

// Pacing bounds the randomized delays the writer and verifier sleep between
// interactions. All windows are half-open [Min, Max).
type Pacing struct {
	PreFocusMin, PreFocusMax   time.Duration
	KeystrokeMin, KeystrokeMax time.Duration
	BulkMin, BulkMax           time.Duration
	SettleMin, SettleMax       time.Duration
}

// DefaultPacing mirrors observed human interaction timing closely enough to
// avoid the obvious instant-paste signature.
func DefaultPacing() Pacing {
	return Pacing{
		PreFocusMin: 250 * time.Millisecond, PreFocusMax: 500 * time.Millisecond,
		KeystrokeMin: 40 * time.Millisecond, KeystrokeMax: 100 * time.Millisecond,
		BulkMin: 250 * time.Millisecond, BulkMax: 500 * time.Millisecond,
		SettleMin: 500 * time.Millisecond, SettleMax: 1000 * time.Millisecond,
	}
}

func jitterBetween(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Writer populates a located input with human-paced keystrokes followed by a
// single bulk insert. The writer itself never judges success; a write that
// the page rejects surfaces as a verification mismatch downstream.
type Writer struct {
	pacing Pacing
	jitter func(min, max time.Duration) time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewWriter creates a writer with the given pacing windows.
func NewWriter(p Pacing) *Writer {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Writer{
		pacing: p,
		jitter: func(min, max time.Duration) time.Duration { return jitterBetween(rng, min, max) },
		sleep:  sleepCtx,
	}
}

// Write focuses the input, clears it, types the opening of the message one
// keystroke at a time, then inserts the remainder in one operation and fires
// the synthetic change notifications. Errors are transport faults only.
func (w *Writer) Write(ctx context.Context, in Input, message string) error {
	if err := w.sleep(ctx, w.jitter(w.pacing.PreFocusMin, w.pacing.PreFocusMax)); err != nil {
		return err
	}
	if err := in.Click(ctx); err != nil {
		return err
	}
	if err := in.Clear(ctx); err != nil {
		return err
	}

	runes := []rune(message)
	prefix := runes
	if len(prefix) > typedPrefixRunes {
		prefix = runes[:typedPrefixRunes]
	}
	for _, r := range prefix {
		if err := w.sleep(ctx, w.jitter(w.pacing.KeystrokeMin, w.pacing.KeystrokeMax)); err != nil {
			return err
		}
		if err := in.TypeRunes(ctx, string(r)); err != nil {
			return err
		}
	}

	if rest := string(runes[len(prefix):]); rest != "" {
		if err := w.sleep(ctx, w.jitter(w.pacing.BulkMin, w.pacing.BulkMax)); err != nil {
			return err
		}
		if err := in.InsertText(ctx, rest); err != nil {
			return err
		}
	}

	return in.NotifyChanged(ctx)
}
