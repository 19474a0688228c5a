package draft

import (
	"context"
	"errors"
)

// Strategy is one way of finding the message-compose element. Strategies are
// tried strictly in order; there are no retries within a drafting attempt.
type Strategy struct {
	Name     string
	Selector string
}

// DefaultStrategies returns the compose-input fallback chain, highest
// priority first. The platform rotates its markup between the contenteditable
// paragraph and the plain textarea variants, so all of them stay in the list.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "editable-paragraph", Selector: `div[role="textbox"][contenteditable="true"] p`},
		{Name: "editable-container", Selector: `div[contenteditable="true"][role="textbox"]`},
		{Name: "editable-autodir-paragraph", Selector: `p[dir="auto"][contenteditable="true"]`},
		{Name: "textarea", Selector: `textarea[placeholder="Message..."]`},
		{Name: "textbox-role", Selector: `[role="textbox"]`},
	}
}

// Locate tries each strategy against the thread view and returns the first
// element found. A miss on every strategy returns ErrNoInput; any other
// error from the surface is returned as-is.
func Locate(ctx context.Context, th Thread, strategies []Strategy) (Input, Strategy, error) {
	for _, s := range strategies {
		in, err := th.Find(ctx, s.Selector)
		if err != nil {
			if errors.Is(err, ErrNoInput) {
				continue
			}
			return nil, s, err
		}
		return in, s, nil
	}
	return nil, Strategy{}, ErrNoInput
}
