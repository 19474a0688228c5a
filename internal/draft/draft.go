package draft

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Request carries everything needed to compose one message.
type Request struct {
	Template     string
	FirstName    string
	NameResolved bool
}

// Result is the structured outcome of one drafting attempt.
// Succeeded implies ObservedText equals ComposedMessage after trimming.
type Result struct {
	Succeeded       bool
	FirstName       string
	ComposedMessage string
	ObservedText    string
	Reason          string
}

// Drafter sequences personalization, input location, typed writing, and
// verification into a single at-most-one-attempt operation. It never retries;
// a miss or mismatch at any step fails the attempt immediately.
type Drafter struct {
	strategies []Strategy
	writer     *Writer
	verifier   *Verifier
	log        *zap.Logger
}

// NewDrafter creates a drafter with the default strategy chain and pacing.
func NewDrafter(log *zap.Logger) *Drafter {
	p := DefaultPacing()
	return &Drafter{
		strategies: DefaultStrategies(),
		writer:     NewWriter(p),
		verifier:   NewVerifier(p),
		log:        log,
	}
}

// Draft runs one drafting attempt against the given thread surface.
func (d *Drafter) Draft(ctx context.Context, th Thread, req Request) Result {
	res := Result{FirstName: strings.TrimSpace(req.FirstName)}
	res.ComposedMessage = Personalize(req.Template, req.FirstName, req.NameResolved)

	in, strat, err := Locate(ctx, th, d.strategies)
	if err != nil {
		res.Reason = fmt.Sprintf("locate input: %v", err)
		return res
	}
	d.log.Debug("compose input located", zap.String("strategy", strat.Name))

	if err := d.writer.Write(ctx, in, res.ComposedMessage); err != nil {
		res.Reason = fmt.Sprintf("write message: %v", err)
		return res
	}

	observed, match, err := d.verifier.Verify(ctx, in, res.ComposedMessage)
	if err != nil {
		res.Reason = fmt.Sprintf("verify message: %v", err)
		return res
	}
	res.ObservedText = observed
	if !match {
		res.Reason = fmt.Sprintf("verification mismatch: wrote %q, thread shows %q", res.ComposedMessage, observed)
		return res
	}

	res.Succeeded = true
	return res
}
