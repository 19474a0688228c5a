package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"dmdraft/internal/draft"
	"dmdraft/internal/outreach"
)

// rodThread adapts a rod page to the drafting package's thread surface.
// Find does not wait: the opener has already brought the thread view up, and
// the locator contract is a single pass over the selector chain.
type rodThread struct {
	page *rod.Page
}

func (th *rodThread) Find(ctx context.Context, selector string) (draft.Input, error) {
	has, el, err := th.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("probe %q: %w", selector, err)
	}
	if !has {
		return nil, draft.ErrNoInput
	}
	return &rodInput{page: th.page, el: el}, nil
}

// rodInput drives a located compose element through CDP.
type rodInput struct {
	page *rod.Page
	el   *rod.Element
}

func (in *rodInput) Click(ctx context.Context) error {
	return in.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (in *rodInput) Clear(ctx context.Context) error {
	el := in.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select all: %w", err)
	}
	return el.Type(input.Backspace)
}

func (in *rodInput) TypeRunes(ctx context.Context, text string) error {
	el := in.el.Context(ctx)
	for _, r := range text {
		if err := el.Type(input.Key(r)); err != nil {
			return fmt.Errorf("type rune %q: %w", r, err)
		}
	}
	return nil
}

func (in *rodInput) InsertText(ctx context.Context, text string) error {
	if err := in.el.Context(ctx).Focus(); err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	return in.page.Context(ctx).InsertText(text)
}

func (in *rodInput) NotifyChanged(ctx context.Context) error {
	_, err := in.el.Context(ctx).Eval(`() => {
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`)
	return err
}

func (in *rodInput) Text(ctx context.Context) (string, error) {
	return in.el.Context(ctx).Text()
}

// Drafter runs the drafting pipeline against the thread open in a tab.
type Drafter struct {
	inner *draft.Drafter
}

// NewDrafter wraps the drafting orchestrator for rod tabs.
func NewDrafter(log *zap.Logger) *Drafter {
	return &Drafter{inner: draft.NewDrafter(log)}
}

// Draft adapts the tab's page into a thread surface and runs one attempt.
func (d *Drafter) Draft(ctx context.Context, t outreach.Tab, req draft.Request) draft.Result {
	page, err := pageOf(t)
	if err != nil {
		return draft.Result{
			ComposedMessage: draft.Personalize(req.Template, req.FirstName, req.NameResolved),
			Reason:          err.Error(),
		}
	}
	return d.inner.Draft(ctx, &rodThread{page: page}, req)
}
