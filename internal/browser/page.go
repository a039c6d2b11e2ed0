// internal/browser/page.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formprobe/internal/forms"
)

const (
	formSelector   = "form"
	fieldSelector  = "input, select, textarea"
	submitSelector = "button[type=submit], input[type=submit]"

	// submitSettleDelay gives a submit time to start navigating before the page is checked.
	submitSettleDelay = 500 * time.Millisecond
)

var (
	_ forms.Page  = (*page)(nil)
	_ forms.Form  = (*formHandle)(nil)
	_ forms.Field = (*fieldHandle)(nil)
)

type page struct {
	s *Session
}

func (p *page) Forms(ctx context.Context) ([]forms.Form, error) {
	nodes, err := p.s.queryAll(ctx, formSelector, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", formSelector, err)
	}
	out := make([]forms.Form, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &formHandle{s: p.s, node: n})
	}
	return out, nil
}

// queryAll snapshots the nodes matching sel, below root when it is non-nil.
// An empty match returns immediately instead of waiting.
func (s *Session) queryAll(ctx context.Context, sel string, root *cdp.Node) ([]*cdp.Node, error) {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if root != nil {
		opts = append(opts, chromedp.FromNode(root))
	}
	var nodes []*cdp.Node
	if err := s.RunActions(ctx, chromedp.Nodes(sel, &nodes, opts...)); err != nil {
		return nil, err
	}
	return nodes, nil
}

type formHandle struct {
	s    *Session
	node *cdp.Node
}

func (f *formHandle) ScrollIntoView(ctx context.Context) error {
	return f.s.call(ctx, f.node.NodeID, jsScrollIntoView, nil)
}

func (f *formHandle) Fields(ctx context.Context) ([]forms.Field, error) {
	nodes, err := f.s.queryAll(ctx, fieldSelector, f.node)
	if err != nil {
		return nil, fmt.Errorf("querying fields: %w", err)
	}
	out := make([]forms.Field, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &fieldHandle{s: f.s, node: n})
	}
	return out, nil
}

func (f *formHandle) Submit(ctx context.Context) error {
	controls, err := f.s.queryAll(ctx, submitSelector, f.node)
	if err != nil {
		return fmt.Errorf("querying submit control: %w", err)
	}
	if len(controls) == 0 {
		return forms.ErrNoSubmitControl
	}

	before, err := f.s.Location(ctx)
	if err != nil {
		return err
	}
	if err := f.s.RunActions(ctx,
		chromedp.Click([]cdp.NodeID{controls[0].NodeID}, chromedp.ByNodeID),
		chromedp.Sleep(submitSettleDelay),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("submitting form: %w", err)
	}

	after, err := f.s.Location(ctx)
	if err != nil {
		return err
	}
	if after == before {
		return nil
	}
	f.s.logger.Info("Submit navigated away; going back.", zap.String("url", after))
	if err := f.s.RunActions(ctx,
		chromedp.NavigateBack(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigating back after submit: %w", err)
	}
	return nil
}

type fieldHandle struct {
	s    *Session
	node *cdp.Node
}

func (f *fieldHandle) ids() []cdp.NodeID { return []cdp.NodeID{f.node.NodeID} }

func (f *fieldHandle) Tag() string {
	if f.node.LocalName != "" {
		return f.node.LocalName
	}
	return strings.ToLower(f.node.NodeName)
}

func (f *fieldHandle) Attr(name string) (string, bool) {
	return f.node.Attribute(name)
}

func (f *fieldHandle) Visible(ctx context.Context) (bool, error) {
	var visible bool
	err := f.s.call(ctx, f.node.NodeID, jsVisible, &visible)
	return visible, err
}

func (f *fieldHandle) Selected(ctx context.Context) (bool, error) {
	var checked bool
	err := f.s.call(ctx, f.node.NodeID, jsChecked, &checked)
	return checked, err
}

func (f *fieldHandle) Click(ctx context.Context) error {
	return f.s.RunActions(ctx, chromedp.Click(f.ids(), chromedp.ByNodeID))
}

func (f *fieldHandle) Clear(ctx context.Context) error {
	return f.s.RunActions(ctx, chromedp.Clear(f.ids(), chromedp.ByNodeID))
}

func (f *fieldHandle) Type(ctx context.Context, text string) error {
	return f.s.RunActions(ctx, chromedp.SendKeys(f.ids(), text, chromedp.ByNodeID))
}

func (f *fieldHandle) SetValueByScript(ctx context.Context, text string) error {
	fn, err := withString(jsSetValue, text)
	if err != nil {
		return err
	}
	return f.s.call(ctx, f.node.NodeID, fn, nil)
}

func (f *fieldHandle) Options(ctx context.Context) ([]forms.Option, error) {
	var opts []forms.Option
	if err := f.s.call(ctx, f.node.NodeID, jsOptions, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func (f *fieldHandle) SelectByValue(ctx context.Context, value string) error {
	fn, err := withString(jsSelectByValue, value)
	if err != nil {
		return err
	}
	return f.s.call(ctx, f.node.NodeID, fn, nil)
}

// call runs a node-bound script inside the session.
func (s *Session) call(ctx context.Context, id cdp.NodeID, fn string, res interface{}) error {
	return s.RunActions(ctx, chromedp.ActionFunc(func(c context.Context) error {
		return callOnNode(c, id, fn, res)
	}))
}
