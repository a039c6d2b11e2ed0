// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/xkilldash9x/formprobe/internal/config"
	"github.com/xkilldash9x/formprobe/internal/forms"
	"github.com/xkilldash9x/formprobe/internal/observability"
)

// stubField is a text-like control that accepts every interaction.
type stubField struct {
	tag   string
	attrs map[string]string
	value string
}

func (f *stubField) Tag() string { return f.tag }
func (f *stubField) Attr(name string) (string, bool) {
	v, ok := f.attrs[name]
	return v, ok
}
func (f *stubField) Visible(context.Context) (bool, error)  { return true, nil }
func (f *stubField) Selected(context.Context) (bool, error) { return false, nil }
func (f *stubField) Click(context.Context) error            { return nil }
func (f *stubField) Clear(context.Context) error {
	f.value = ""
	return nil
}
func (f *stubField) Type(_ context.Context, text string) error {
	f.value += text
	return nil
}
func (f *stubField) SetValueByScript(_ context.Context, text string) error {
	f.value = text
	return nil
}
func (f *stubField) Options(context.Context) ([]forms.Option, error) { return nil, nil }
func (f *stubField) SelectByValue(context.Context, string) error     { return nil }

type stubForm struct {
	fields    []forms.Field
	submitted int
}

func (f *stubForm) ScrollIntoView(context.Context) error { return nil }
func (f *stubForm) Fields(context.Context) ([]forms.Field, error) {
	return f.fields, nil
}
func (f *stubForm) Submit(context.Context) error {
	f.submitted++
	return nil
}

type stubPage struct{ forms []forms.Form }

func (p *stubPage) Forms(context.Context) ([]forms.Form, error) { return p.forms, nil }

// fakeSession stands in for the browser and records how it was driven.
type fakeSession struct {
	mu      sync.Mutex
	cfg     config.BrowserConfig
	page    *stubPage
	openErr error

	openedURL string
	opens     int
	closes    int
}

func (s *fakeSession) ID() string { return "fake-session" }

func (s *fakeSession) Open(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	s.openedURL = url
	return s.openErr
}

func (s *fakeSession) Close(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
}

func (s *fakeSession) Page() forms.Page { return s.page }

// installFakeSession swaps the browser factory for one returning session.
func installFakeSession(t *testing.T, session *fakeSession) {
	t.Helper()
	orig := newSession
	newSession = func(cfg config.BrowserConfig, _ *zap.Logger) browserSession {
		session.cfg = cfg
		return session
	}
	t.Cleanup(func() { newSession = orig })
}

// pageWithTextForm returns a page with one form of text inputs named after names.
func pageWithTextForm(names ...string) (*stubPage, []*stubField) {
	form := &stubForm{}
	var fields []*stubField
	for _, n := range names {
		f := &stubField{tag: "input", attrs: map[string]string{"type": "text", "name": n}}
		fields = append(fields, f)
		form.fields = append(form.fields, f)
	}
	return &stubPage{forms: []forms.Form{form}}, fields
}

// resetForTest isolates global logger state and keeps config discovery away
// from any config.yaml in the working directory.
func resetForTest(t *testing.T) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	t.Chdir(t.TempDir())
	t.Setenv("FORMPROBE_LOGGER_LEVEL", "error")
}

// executeCommand runs a fresh root command and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

var errBrowserMissing = errors.New("exec: \"google-chrome\": executable file not found in $PATH")
