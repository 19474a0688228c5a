package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeInput records the operations driven against it and renders whatever
// was typed/inserted, unless a canned observed text overrides it.
type fakeInput struct {
	ops      []string
	content  string
	observed *string // when set, Text returns this instead of content
	textErr  error
}

func (f *fakeInput) Click(context.Context) error { f.ops = append(f.ops, "click"); return nil }
func (f *fakeInput) Clear(context.Context) error {
	f.ops = append(f.ops, "clear")
	f.content = ""
	return nil
}
func (f *fakeInput) TypeRunes(_ context.Context, s string) error {
	f.ops = append(f.ops, "type:"+s)
	f.content += s
	return nil
}
func (f *fakeInput) InsertText(_ context.Context, s string) error {
	f.ops = append(f.ops, "insert")
	f.content += s
	return nil
}
func (f *fakeInput) NotifyChanged(context.Context) error {
	f.ops = append(f.ops, "notify")
	return nil
}
func (f *fakeInput) Text(context.Context) (string, error) {
	if f.textErr != nil {
		return "", f.textErr
	}
	if f.observed != nil {
		return *f.observed, nil
	}
	return f.content, nil
}

// fakeThread maps selectors to inputs; unknown selectors miss.
type fakeThread struct {
	inputs  map[string]Input
	findErr error
	probed  []string
}

func (f *fakeThread) Find(_ context.Context, selector string) (Input, error) {
	f.probed = append(f.probed, selector)
	if f.findErr != nil {
		return nil, f.findErr
	}
	if in, ok := f.inputs[selector]; ok {
		return in, nil
	}
	return nil, ErrNoInput
}

// testDrafter returns a drafter whose pacing sleeps are no-ops.
func testDrafter(t *testing.T) *Drafter {
	t.Helper()
	d := NewDrafter(zap.NewNop())
	instant := func(min, max time.Duration) time.Duration { return 0 }
	noSleep := func(context.Context, time.Duration) error { return nil }
	d.writer.jitter = instant
	d.writer.sleep = noSleep
	d.verifier.jitter = instant
	d.verifier.sleep = noSleep
	return d
}

func TestDraftSuccess(t *testing.T) {
	in := &fakeInput{}
	th := &fakeThread{inputs: map[string]Input{
		`div[contenteditable="true"][role="textbox"]`: in,
	}}

	d := testDrafter(t)
	res := d.Draft(context.Background(), th, Request{
		Template:     "Hi! Loved your latest post",
		FirstName:    "Alex",
		NameResolved: true,
	})

	require.True(t, res.Succeeded, "reason: %s", res.Reason)
	assert.Equal(t, "Hi Alex! Loved your latest post", res.ComposedMessage)
	assert.Equal(t, res.ComposedMessage, res.ObservedText)
	assert.Equal(t, "Alex", res.FirstName)

	// First strategy misses, second hits.
	require.Len(t, th.probed, 2)
	assert.Equal(t, `div[role="textbox"][contenteditable="true"] p`, th.probed[0])
}

func TestDraftSucceedsDespiteWhitespaceDifferences(t *testing.T) {
	in := &fakeInput{}
	observed := "  Hi! Welcome \n"
	in.observed = &observed
	th := &fakeThread{inputs: map[string]Input{`[role="textbox"]`: in}}

	d := testDrafter(t)
	res := d.Draft(context.Background(), th, Request{Template: "Hi! Welcome"})

	assert.True(t, res.Succeeded)
	assert.Equal(t, observed, res.ObservedText)
}

func TestDraftNoInputLocated(t *testing.T) {
	th := &fakeThread{}

	d := testDrafter(t)
	res := d.Draft(context.Background(), th, Request{Template: "Hi! Welcome"})

	assert.False(t, res.Succeeded)
	assert.Equal(t, "Hi! Welcome", res.ComposedMessage)
	assert.Empty(t, res.ObservedText)
	assert.Contains(t, res.Reason, "locate input")
	// Every strategy in the chain was attempted exactly once.
	assert.Len(t, th.probed, len(DefaultStrategies()))
}

func TestDraftVerificationMismatch(t *testing.T) {
	in := &fakeInput{}
	observed := "Hi! Welcom" // truncated by the page
	in.observed = &observed
	th := &fakeThread{inputs: map[string]Input{`[role="textbox"]`: in}}

	d := testDrafter(t)
	res := d.Draft(context.Background(), th, Request{Template: "Hi! Welcome"})

	assert.False(t, res.Succeeded)
	assert.Equal(t, "Hi! Welcome", res.ComposedMessage)
	assert.Equal(t, observed, res.ObservedText)
	assert.Contains(t, res.Reason, "verification mismatch")
}

func TestDraftSurfaceFault(t *testing.T) {
	th := &fakeThread{findErr: errors.New("target crashed")}

	d := testDrafter(t)
	res := d.Draft(context.Background(), th, Request{Template: "Hi! Welcome"})

	assert.False(t, res.Succeeded)
	assert.Contains(t, res.Reason, "target crashed")
}

func TestDraftReadbackFault(t *testing.T) {
	in := &fakeInput{textErr: errors.New("detached node")}
	th := &fakeThread{inputs: map[string]Input{`[role="textbox"]`: in}}

	d := testDrafter(t)
	res := d.Draft(context.Background(), th, Request{Template: "Hi! Welcome"})

	assert.False(t, res.Succeeded)
	assert.Contains(t, res.Reason, "verify message")
}
