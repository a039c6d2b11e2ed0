package forms

import (
	"context"
	"errors"
)

// ErrNoSubmitControl is returned by Form.Submit when the form has no submit button.
var ErrNoSubmitControl = errors.New("form has no submit control")

// Page is the live document being exercised.
type Page interface {
	// Forms snapshots every form element currently in the document, in
	// document order. Later DOM mutation does not update the result.
	Forms(ctx context.Context) ([]Form, error)
}

// Form is a handle to one located form. It is valid only while that form is
// being processed and must not be cached across forms.
type Form interface {
	ScrollIntoView(ctx context.Context) error
	// Fields returns the descendant input, select and textarea controls in
	// document order, from a single combined query.
	Fields(ctx context.Context) ([]Field, error)
	// Submit clicks the form's first submit control, waits for the page to
	// settle and navigates back if the submit left the page.
	Submit(ctx context.Context) error
}

// Field is a handle to one input-like control.
type Field interface {
	// Tag is the lower-cased tag name.
	Tag() string
	// Attr returns an attribute as captured when the handle was created.
	Attr(name string) (string, bool)

	Visible(ctx context.Context) (bool, error)
	Selected(ctx context.Context) (bool, error)

	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	Type(ctx context.Context, text string) error
	// SetValueByScript assigns the value property directly, bypassing keyboard simulation.
	SetValueByScript(ctx context.Context, text string) error

	Options(ctx context.Context) ([]Option, error)
	SelectByValue(ctx context.Context, value string) error
}

// attr returns the attribute value, or "" when absent.
func attr(f Field, name string) string {
	v, _ := f.Attr(name)
	return v
}
