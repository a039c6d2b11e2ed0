package forms

import "strings"

// Action is the interaction applied to a field, derived from its tag and declared type.
type Action int

const (
	ActionNone Action = iota
	ActionFillText
	ActionFillNumber
	ActionFillDate
	ActionFillPassword
	ActionToggle
	ActionSkipFile
	ActionSkipHidden
	ActionSkipSubmit
	ActionSelectOption
	ActionFillNote
)

var actionNames = map[Action]string{
	ActionNone:         "none",
	ActionFillText:     "fill_text",
	ActionFillNumber:   "fill_number",
	ActionFillDate:     "fill_date",
	ActionFillPassword: "fill_password",
	ActionToggle:       "toggle",
	ActionSkipFile:     "skip_file",
	ActionSkipHidden:   "skip_hidden",
	ActionSkipSubmit:   "skip_submit",
	ActionSelectOption: "select_option",
	ActionFillNote:     "fill_note",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the action by name in reports.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Skipped reports whether the action deliberately leaves the field alone.
func (a Action) Skipped() bool {
	switch a {
	case ActionSkipFile, ActionSkipHidden, ActionSkipSubmit, ActionNone:
		return true
	}
	return false
}

// Classify maps a control's tag and declared type to an action. Both inputs
// are case-insensitive. Unrecognized input types, including the empty string,
// are treated as text.
func Classify(tag, typ string) Action {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "select":
		return ActionSelectOption
	case "textarea":
		return ActionFillNote
	case "input":
	default:
		return ActionNone
	}

	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "text", "search", "email", "tel":
		return ActionFillText
	case "number":
		return ActionFillNumber
	case "date":
		return ActionFillDate
	case "password":
		return ActionFillPassword
	case "checkbox", "radio":
		// Radio group membership is not tracked, so radios in separate groups
		// of one form may all end up selected.
		return ActionToggle
	case "file":
		return ActionSkipFile
	case "hidden":
		return ActionSkipHidden
	case "submit":
		return ActionSkipSubmit
	default:
		return ActionFillText
	}
}
