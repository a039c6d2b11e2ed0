package forms

import (
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Outcome describes what happened to one field.
type Outcome string

const (
	OutcomeFilled          Outcome = "filled"
	OutcomeFilledByScript  Outcome = "filled_by_script"
	OutcomeNotVisible      Outcome = "not_visible"
	OutcomeUnmodified      Outcome = "unmodified"
	OutcomeToggled         Outcome = "toggled"
	OutcomeAlreadySelected Outcome = "already_selected"
	OutcomeSelected        Outcome = "selected"
	OutcomeNoOption        Outcome = "no_option"
	OutcomeSkipped         Outcome = "skipped"
	OutcomeFailed          Outcome = "failed"
)

// FieldResult is the transcript entry for one field.
type FieldResult struct {
	Index      int     `json:"index"`
	Tag        string  `json:"tag"`
	Type       string  `json:"type"`
	Identifier string  `json:"identifier"`
	Action     Action  `json:"action"`
	Value      string  `json:"value,omitempty"`
	Outcome    Outcome `json:"outcome"`
	Error      string  `json:"error,omitempty"`
}

// FormResult is the transcript entry for one form.
type FormResult struct {
	Index  int           `json:"index"`
	Fields []FieldResult `json:"fields"`
	// Error is set when the form could not be processed past some point.
	Error     string `json:"error,omitempty"`
	Submitted bool   `json:"submitted,omitempty"`
}

// Report is the transcript of one run. It is never persisted beyond the run
// except through WriteJSON.
type Report struct {
	RunID      string       `json:"run_id"`
	URL        string       `json:"url,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Forms      []FormResult `json:"forms"`
}

// FieldCount is the number of fields visited across all forms.
func (r *Report) FieldCount() int {
	n := 0
	for _, f := range r.Forms {
		n += len(f.Fields)
	}
	return n
}

// CountOutcome counts fields across all forms with the given outcome.
func (r *Report) CountOutcome(o Outcome) int {
	n := 0
	for _, f := range r.Forms {
		for _, fld := range f.Fields {
			if fld.Outcome == o {
				n++
			}
		}
	}
	return n
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
