package forms

import (
	"strings"
	"time"
)

// Synthetic values injected by the exerciser.
const (
	NumberValue   = "123"
	PasswordValue = "P@ssw0rd!"
	NoteValue     = "This is an automated test note."

	// NoName is the identifier reported for controls with neither name nor id.
	NoName = "<no-name>"

	dateLayout        = "2006-01-02"
	placeholderMarker = "Select"
)

// Option is one entry of a select control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Identifier returns the display name of a control: its name, else its id,
// else NoName. Blank attributes count as absent.
func Identifier(name, id string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if i := strings.TrimSpace(id); i != "" {
		return i
	}
	return NoName
}

// Sanitize keeps ASCII letters, digits and underscores and lower-cases the
// result. An input with nothing left to keep yields "field".
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		}
	}
	if b.Len() == 0 {
		return "field"
	}
	return b.String()
}

// TextValue derives the value injected into text-like inputs.
// "First Name" becomes "test_firstname"; a control with no name or id gets "test_field".
func TextValue(name, id string) string {
	raw := strings.TrimSpace(name)
	if raw == "" {
		raw = strings.TrimSpace(id)
	}
	return "test_" + Sanitize(raw)
}

// DateValue formats now as YYYY-MM-DD.
func DateValue(now time.Time) string {
	return now.Format(dateLayout)
}

// PickOption returns the first option with a non-blank value whose label does
// not contain "Select". Placeholder-only lists yield false.
func PickOption(opts []Option) (Option, bool) {
	for _, o := range opts {
		if strings.TrimSpace(o.Value) == "" {
			continue
		}
		if strings.Contains(o.Label, placeholderMarker) {
			continue
		}
		return o, true
	}
	return Option{}, false
}
