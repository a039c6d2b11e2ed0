package forms

import (
	"context"
	"sync"
)

// fakeField records every interaction made against it.
type fakeField struct {
	mu sync.Mutex

	tag      string
	attrs    map[string]string
	visible  bool
	selected bool
	options  []Option

	visibleErr error
	clearErr   error
	typeErr    error
	scriptErr  error
	clickErr   error
	optionsErr error
	selectErr  error
	panicOnUse bool

	value string
	calls []string
}

func newInput(typ string, attrs ...string) *fakeField {
	f := &fakeField{tag: "input", attrs: map[string]string{}, visible: true}
	if typ != "" {
		f.attrs["type"] = typ
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		f.attrs[attrs[i]] = attrs[i+1]
	}
	return f
}

func (f *fakeField) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnUse {
		panic("widget exploded")
	}
	f.calls = append(f.calls, call)
}

func (f *fakeField) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeField) Tag() string { return f.tag }

func (f *fakeField) Attr(name string) (string, bool) {
	v, ok := f.attrs[name]
	return v, ok
}

func (f *fakeField) Visible(ctx context.Context) (bool, error) {
	f.record("visible")
	return f.visible, f.visibleErr
}

func (f *fakeField) Selected(ctx context.Context) (bool, error) {
	f.record("selected")
	return f.selected, nil
}

func (f *fakeField) Click(ctx context.Context) error {
	f.record("click")
	if f.clickErr != nil {
		return f.clickErr
	}
	f.selected = true
	return nil
}

func (f *fakeField) Clear(ctx context.Context) error {
	f.record("clear")
	if f.clearErr != nil {
		return f.clearErr
	}
	f.value = ""
	return nil
}

func (f *fakeField) Type(ctx context.Context, text string) error {
	f.record("type:" + text)
	if f.typeErr != nil {
		return f.typeErr
	}
	f.value += text
	return nil
}

func (f *fakeField) SetValueByScript(ctx context.Context, text string) error {
	f.record("script:" + text)
	if f.scriptErr != nil {
		return f.scriptErr
	}
	f.value = text
	return nil
}

func (f *fakeField) Options(ctx context.Context) ([]Option, error) {
	f.record("options")
	return f.options, f.optionsErr
}

func (f *fakeField) SelectByValue(ctx context.Context, value string) error {
	f.record("select:" + value)
	if f.selectErr != nil {
		return f.selectErr
	}
	f.value = value
	return nil
}

type fakeForm struct {
	fields    []Field
	fieldsErr error
	scrollErr error
	submitErr error

	scrolled  int
	listed    int
	submitted int
}

func (f *fakeForm) ScrollIntoView(ctx context.Context) error {
	f.scrolled++
	return f.scrollErr
}

func (f *fakeForm) Fields(ctx context.Context) ([]Field, error) {
	f.listed++
	if f.fieldsErr != nil {
		return nil, f.fieldsErr
	}
	return f.fields, nil
}

func (f *fakeForm) Submit(ctx context.Context) error {
	f.submitted++
	return f.submitErr
}

type fakePage struct {
	forms []Form
	err   error
}

func (p *fakePage) Forms(ctx context.Context) ([]Form, error) {
	return p.forms, p.err
}

func formOf(fields ...*fakeField) *fakeForm {
	form := &fakeForm{}
	for _, f := range fields {
		form.fields = append(form.fields, f)
	}
	return form
}
