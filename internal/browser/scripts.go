// internal/browser/scripts.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	jsoniter "github.com/json-iterator/go"
)

const releaseTimeout = 2 * time.Second

// Functions called with `this` bound to a resolved DOM node.
const (
	jsVisible = `function() {
	if (!this.isConnected) return false;
	const style = window.getComputedStyle(this);
	if (style.display === 'none' || style.visibility === 'hidden' || style.visibility === 'collapse') return false;
	if (parseFloat(style.opacity) === 0) return false;
	return !!(this.offsetWidth || this.offsetHeight || this.getClientRects().length);
}`

	jsChecked = `function() { return !!(this.checked || this.selected); }`

	jsScrollIntoView = `function() {
	this.scrollIntoView({block: 'center', inline: 'nearest'});
	return true;
}`

	jsOptions = `function() {
	return Array.from(this.options || []).map(o => ({value: o.value, label: o.text}));
}`

	// %s is a JSON-encoded string.
	jsSetValue = `function() {
	this.value = %s;
	this.dispatchEvent(new Event('input', {bubbles: true}));
	this.dispatchEvent(new Event('change', {bubbles: true}));
	return true;
}`

	// %s is a JSON-encoded string.
	jsSelectByValue = `function() {
	const value = %s;
	const opt = Array.from(this.options || []).find(o => o.value === value);
	if (!opt) throw new Error('no option with value ' + JSON.stringify(value));
	opt.selected = true;
	this.value = value;
	this.dispatchEvent(new Event('input', {bubbles: true}));
	this.dispatchEvent(new Event('change', {bubbles: true}));
	return true;
}`
)

// withString fills a script template with text encoded as a JS string literal.
func withString(template, text string) (string, error) {
	lit, err := jsoniter.MarshalToString(text)
	if err != nil {
		return "", fmt.Errorf("encoding script argument: %w", err)
	}
	return fmt.Sprintf(template, lit), nil
}

// callOnNode runs fn with `this` bound to the node and decodes its return
// value into res when res is non-nil. It must run inside a chromedp action.
func callOnNode(ctx context.Context, id cdp.NodeID, fn string, res interface{}) error {
	obj, err := dom.ResolveNode().WithNodeID(id).Do(ctx)
	if err != nil {
		return fmt.Errorf("resolving node %d: %w", id, err)
	}
	defer func() {
		rctx, cancel := context.WithTimeout(Detach(ctx), releaseTimeout)
		defer cancel()
		_ = runtime.ReleaseObject(obj.ObjectID).Do(rctx)
	}()

	ret, exc, err := runtime.CallFunctionOn(fn).
		WithObjectID(obj.ObjectID).
		WithReturnByValue(true).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("calling function on node %d: %w", id, err)
	}
	if exc != nil {
		return fmt.Errorf("script threw on node %d: %s", id, exceptionText(exc))
	}
	if res == nil || ret == nil || len(ret.Value) == 0 {
		return nil
	}
	if err := jsoniter.Unmarshal([]byte(ret.Value), res); err != nil {
		return fmt.Errorf("decoding script result: %w", err)
	}
	return nil
}

func exceptionText(exc *runtime.ExceptionDetails) string {
	if exc.Exception != nil && exc.Exception.Description != "" {
		return exc.Exception.Description
	}
	return exc.Text
}
