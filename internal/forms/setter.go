package forms

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotVisible stops a strategy chain without trying later strategies.
// Hidden controls are left alone on purpose.
var ErrNotVisible = errors.New("field is not visible")

// SetStrategy is one way of putting text into a field.
type SetStrategy interface {
	Name() string
	Set(ctx context.Context, f Field, text string) error
}

// requireVisible returns ErrNotVisible for hidden fields.
func requireVisible(ctx context.Context, f Field) error {
	visible, err := f.Visible(ctx)
	if err != nil {
		return fmt.Errorf("checking visibility: %w", err)
	}
	if !visible {
		return ErrNotVisible
	}
	return nil
}

// KeyboardStrategy clears the field and types into it, the way a user would.
type KeyboardStrategy struct{}

func (KeyboardStrategy) Name() string { return "keyboard" }

func (KeyboardStrategy) Set(ctx context.Context, f Field, text string) error {
	if err := requireVisible(ctx, f); err != nil {
		return err
	}
	if err := f.Clear(ctx); err != nil {
		return fmt.Errorf("clearing field: %w", err)
	}
	if err := f.Type(ctx, text); err != nil {
		return fmt.Errorf("typing into field: %w", err)
	}
	return nil
}

// ScriptStrategy assigns the value property from script. It reaches custom
// widgets that reject simulated keystrokes. With RequireVisible set, hidden
// fields stop the chain the same way they do for the keyboard.
type ScriptStrategy struct {
	RequireVisible bool
}

func (ScriptStrategy) Name() string { return "script" }

func (s ScriptStrategy) Set(ctx context.Context, f Field, text string) error {
	if s.RequireVisible {
		if err := requireVisible(ctx, f); err != nil {
			return err
		}
	}
	if err := f.SetValueByScript(ctx, text); err != nil {
		return fmt.Errorf("assigning value by script: %w", err)
	}
	return nil
}

// SetResult records how a ValueSetter dealt with one field.
type SetResult struct {
	// Strategy is the name of the strategy that succeeded, empty otherwise.
	Strategy string
	// NotVisible is set when the field was left alone because it is hidden.
	NotVisible bool
	// Errs holds the failure of every strategy tried, in order.
	Errs []error
}

// OK reports whether some strategy set the value.
func (r SetResult) OK() bool { return r.Strategy != "" }

// Err joins the strategy failures, or returns nil.
func (r SetResult) Err() error { return errors.Join(r.Errs...) }

// ValueSetter tries its strategies in order until one succeeds. If all of
// them fail the field is left unmodified and the failure is only logged.
type ValueSetter struct {
	Strategies []SetStrategy
	logger     *zap.Logger
}

// NewValueSetter returns a setter trying the keyboard first, then script assignment.
func NewValueSetter(logger *zap.Logger) *ValueSetter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValueSetter{
		Strategies: []SetStrategy{KeyboardStrategy{}, ScriptStrategy{}},
		logger:     logger,
	}
}

// NewDateValueSetter returns a setter for date inputs: script assignment
// first, then the keyboard. Keystrokes into a segmented date input can leave
// a wrong value without reporting an error.
func NewDateValueSetter(logger *zap.Logger) *ValueSetter {
	s := NewValueSetter(logger)
	s.Strategies = []SetStrategy{ScriptStrategy{RequireVisible: true}, KeyboardStrategy{}}
	return s
}

// Set never fails; the outcome is described by the returned SetResult.
func (s *ValueSetter) Set(ctx context.Context, f Field, text string) SetResult {
	var res SetResult
	for _, strategy := range s.Strategies {
		err := strategy.Set(ctx, f, text)
		if err == nil {
			res.Strategy = strategy.Name()
			return res
		}
		if errors.Is(err, ErrNotVisible) {
			res.NotVisible = true
			return res
		}
		res.Errs = append(res.Errs, fmt.Errorf("%s: %w", strategy.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	s.logger.Debug("All value strategies failed; leaving field unmodified.", zap.Error(res.Err()))
	return res
}
