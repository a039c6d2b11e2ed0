package forms

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"First Name":     "firstname",
		"email_address":  "email_address",
		"Phone-Number#2": "phonenumber2",
		"ÜberName":       "bername",
		"   ":            "field",
		"":               "field",
		"!!!":            "field",
		"ABC_def_123":    "abc_def_123",
	}
	for in, want := range tests {
		assert.Equal(t, want, Sanitize(in), "Sanitize(%q)", in)
	}
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "fname", Identifier("fname", "first"))
	assert.Equal(t, "first", Identifier("", "first"))
	assert.Equal(t, "first", Identifier("  ", " first "))
	assert.Equal(t, NoName, Identifier("", ""))
}

func TestTextValue(t *testing.T) {
	assert.Equal(t, "test_firstname", TextValue("First Name", ""))
	assert.Equal(t, "test_lastname", TextValue("", "Last-Name"))
	assert.Equal(t, "test_field", TextValue("", ""))
	assert.Equal(t, "test_field", TextValue("***", ""))
}

func TestDateValue(t *testing.T) {
	now := time.Date(2026, time.March, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-07", DateValue(now))
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), DateValue(time.Now()))
}

func TestPickOption(t *testing.T) {
	t.Run("skips blank values and placeholders", func(t *testing.T) {
		opt, ok := PickOption([]Option{
			{Value: "", Label: "-- Select --"},
			{Value: "  ", Label: "Blank"},
			{Value: "x", Label: "Select a state"},
			{Value: "ca", Label: "California"},
			{Value: "ny", Label: "New York"},
		})
		assert.True(t, ok)
		assert.Equal(t, Option{Value: "ca", Label: "California"}, opt)
	})

	t.Run("placeholder only", func(t *testing.T) {
		_, ok := PickOption([]Option{
			{Value: "", Label: "Male"},
			{Value: "any", Label: "Select gender"},
		})
		assert.False(t, ok)
	})

	t.Run("match is case sensitive", func(t *testing.T) {
		opt, ok := PickOption([]Option{{Value: "1", Label: "selected works"}})
		assert.True(t, ok)
		assert.Equal(t, "1", opt.Value)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := PickOption(nil)
		assert.False(t, ok)
	})
}
