package outreach

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dmdraft/internal/draft"
	"dmdraft/internal/sheet"
)

type fakeTab struct {
	id       string
	location string
	navErr   error
	visited  []string
}

func (f *fakeTab) ID() string { return f.id }
func (f *fakeTab) Navigate(_ context.Context, url string) error {
	f.visited = append(f.visited, url)
	if f.navErr != nil {
		return f.navErr
	}
	if f.location == "" {
		f.location = url
	}
	return nil
}
func (f *fakeTab) Location(context.Context) (string, error) { return f.location, nil }

type fakeOpener struct {
	strategy string
	err      error
	calls    int
}

func (f *fakeOpener) Open(context.Context, Tab) (string, error) {
	f.calls++
	return f.strategy, f.err
}

type fakeProber struct {
	convo Conversation
	err   error
	panic bool
}

func (f *fakeProber) Probe(context.Context, Tab) (Conversation, error) {
	if f.panic {
		panic("prober exploded")
	}
	return f.convo, f.err
}

type fakeNames struct {
	name string
	ok   bool
}

func (f *fakeNames) FirstName(context.Context, Tab, string) (string, bool) { return f.name, f.ok }

type fakeDrafter struct {
	result  draft.Result
	calls   int
	lastReq draft.Request
}

func (f *fakeDrafter) Draft(_ context.Context, _ Tab, req draft.Request) draft.Result {
	f.calls++
	f.lastReq = req
	return f.result
}

func record() sheet.AccountRecord {
	return sheet.AccountRecord{RowIndex: 4, Username: "alice", Status: "Ready"}
}

func newTestProcessor(opener *fakeOpener, prober *fakeProber, names *fakeNames, drafter *fakeDrafter) *Processor {
	return NewProcessor(opener, prober, names, drafter, "Hi! Welcome", "https://www.instagram.com", zap.NewNop())
}

func TestProcessDraftedPath(t *testing.T) {
	opener := &fakeOpener{strategy: "message-button"}
	prober := &fakeProber{}
	names := &fakeNames{name: "Alice", ok: true}
	drafter := &fakeDrafter{result: draft.Result{
		Succeeded:       true,
		FirstName:       "Alice",
		ComposedMessage: "Hi Alice! Welcome",
		ObservedText:    "Hi Alice! Welcome",
	}}
	p := newTestProcessor(opener, prober, names, drafter)

	tab := &fakeTab{id: "t1"}
	out := p.Process(context.Background(), tab, record())

	assert.Equal(t, OutcomeDrafted, out.Status)
	assert.Equal(t, "Hi Alice! Welcome", out.Message)
	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, 4, out.RowIndex)
	assert.Equal(t, []string{"https://www.instagram.com/alice/"}, tab.visited)
	assert.Equal(t, draft.Request{Template: "Hi! Welcome", FirstName: "Alice", NameResolved: true}, drafter.lastReq)
}

func TestProcessAuthGateShortCircuits(t *testing.T) {
	opener := &fakeOpener{}
	drafter := &fakeDrafter{}
	p := newTestProcessor(opener, &fakeProber{}, &fakeNames{}, drafter)

	tab := &fakeTab{location: "https://www.instagram.com/accounts/login/?next=%2Falice%2F"}
	out := p.Process(context.Background(), tab, record())

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Contains(t, out.Err, "authentication gate")
	assert.Zero(t, opener.calls, "opener must not run after an auth redirect")
	assert.Zero(t, drafter.calls)
}

func TestProcessNavigationFailure(t *testing.T) {
	p := newTestProcessor(&fakeOpener{}, &fakeProber{}, &fakeNames{}, &fakeDrafter{})

	tab := &fakeTab{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	out := p.Process(context.Background(), tab, record())

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Contains(t, out.Err, "navigate")
}

func TestProcessThreadOpenFailure(t *testing.T) {
	opener := &fakeOpener{err: errors.New("no thread-open strategy succeeded")}
	drafter := &fakeDrafter{}
	p := newTestProcessor(opener, &fakeProber{}, &fakeNames{}, drafter)

	out := p.Process(context.Background(), &fakeTab{}, record())

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Contains(t, out.Err, "open thread")
	assert.Zero(t, drafter.calls)
}

func TestProcessExistingConversationSkips(t *testing.T) {
	prober := &fakeProber{convo: Conversation{HasHistory: true, MessageCount: 7}}
	drafter := &fakeDrafter{}
	p := newTestProcessor(&fakeOpener{strategy: "message-button"}, prober, &fakeNames{}, drafter)

	out := p.Process(context.Background(), &fakeTab{}, record())

	assert.Equal(t, OutcomeSkipped, out.Status)
	assert.Equal(t, "existing conversation (7 messages)", out.Reason)
	assert.Zero(t, drafter.calls, "existing conversation must never reach drafting")
}

func TestProcessDraftFailureMapsToFailed(t *testing.T) {
	drafter := &fakeDrafter{result: draft.Result{
		Succeeded:       false,
		ComposedMessage: "Hi! Welcome",
		ObservedText:    "Hi! Welc",
		Reason:          `verification mismatch: wrote "Hi! Welcome", thread shows "Hi! Welc"`,
	}}
	p := newTestProcessor(&fakeOpener{strategy: "message-button"}, &fakeProber{}, &fakeNames{}, drafter)

	out := p.Process(context.Background(), &fakeTab{}, record())

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Contains(t, out.Err, "verification mismatch")
}

func TestProcessRecoversFromPanic(t *testing.T) {
	prober := &fakeProber{panic: true}
	p := newTestProcessor(&fakeOpener{strategy: "message-button"}, prober, &fakeNames{}, &fakeDrafter{})

	var out Outcome
	require.NotPanics(t, func() {
		out = p.Process(context.Background(), &fakeTab{}, record())
	})

	assert.Equal(t, OutcomeFailed, out.Status)
	assert.Contains(t, out.Err, "unexpected fault")
	assert.Contains(t, out.Err, "prober exploded")
}

func TestOutcomeExclusivity(t *testing.T) {
	cases := []Outcome{
		DraftedOutcome(record(), "Hi Alice! Welcome"),
		SkippedOutcome(record(), "existing conversation (2 messages)"),
		FailedOutcome(record(), "navigate: timeout"),
	}
	for _, out := range cases {
		set := 0
		if out.Message != "" {
			set++
		}
		if out.Reason != "" {
			set++
		}
		if out.Err != "" {
			set++
		}
		assert.Equal(t, 1, set, "outcome %q must carry exactly one payload", out.Status)
	}
}
