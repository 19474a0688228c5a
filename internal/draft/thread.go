package draft

import (
	"context"
	"errors"
)

// ErrNoInput reports that a selector matched no element in the thread view.
var ErrNoInput = errors.New("draft: no message input found")

// Input is a located message-compose element. Implementations drive a real
// DOM element; tests substitute in-memory fakes.
type Input interface {
	// Click focuses the element via a simulated pointer action.
	Click(ctx context.Context) error
	// Clear removes pre-existing content with a select-all-then-delete gesture.
	Clear(ctx context.Context) error
	// TypeRunes simulates individual keystrokes for the given text.
	TypeRunes(ctx context.Context, text string) error
	// InsertText inserts text in one bulk operation, as a paste would.
	InsertText(ctx context.Context, text string) error
	// NotifyChanged emits synthetic input/change events so the hosting page's
	// reactive logic picks up content written through the debugger protocol.
	NotifyChanged(ctx context.Context) error
	// Text reads back the element's rendered text content.
	Text(ctx context.Context) (string, error)
}

// Thread is the page surface the locator probes for a compose input.
// Find returns ErrNoInput when the selector matches nothing; any other error
// is an unexpected fault driving the page.
type Thread interface {
	Find(ctx context.Context, selector string) (Input, error)
}
