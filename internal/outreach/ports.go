// Package outreach sequences the per-account pipeline (navigate, open
// thread, probe conversation, draft, classify) and the run loop that owns
// one browser tab per account and applies the tab-retention policy.
package outreach

import (
	"context"
	"errors"

	"dmdraft/internal/draft"
)

// ErrAuthWall reports that navigation landed on the platform's login gate
// instead of the target profile.
var ErrAuthWall = errors.New("outreach: redirected to authentication gate")

// Tab is one isolated navigation context, exclusively owned by the account
// currently in flight.
type Tab interface {
	ID() string
	Navigate(ctx context.Context, url string) error
	// Location returns the URL the tab actually ended up on.
	Location(ctx context.Context) (string, error)
}

// TabAllocator hands out tabs and takes ownership back when an account
// finishes. Retain transfers a tab to the open-for-inspection set; Release
// destroys it.
type TabAllocator interface {
	Open(ctx context.Context) (Tab, error)
	Retain(t Tab)
	Release(t Tab)
}

// ThreadOpener opens the direct-message thread on the current tab and
// reports which strategy succeeded.
type ThreadOpener interface {
	Open(ctx context.Context, t Tab) (strategy string, err error)
}

// Conversation is the prober's view of a thread's history.
type Conversation struct {
	HasHistory   bool
	MessageCount int
}

// ConversationProber checks an open thread for pre-existing messages.
type ConversationProber interface {
	Probe(ctx context.Context, t Tab) (Conversation, error)
}

// NameResolver extracts a usable first name for personalization. ok is false
// when no trustworthy name could be read off the profile.
type NameResolver interface {
	FirstName(ctx context.Context, t Tab, username string) (name string, ok bool)
}

// Drafter runs one drafting attempt in the open thread.
type Drafter interface {
	Draft(ctx context.Context, t Tab, req draft.Request) draft.Result
}

// Store persists one account's outcome back to the tracking sheet.
type Store interface {
	UpdateOutcome(ctx context.Context, rowIndex int, dateSent, message, status string) error
}
