package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/formprobe/internal/config"
)

// ErrNoForms is the one failure a run reports: the page had no forms at all.
var ErrNoForms = errors.New("no forms found on page")

// Options tune an Exerciser.
type Options struct {
	// WaitTimeout bounds each field action and each form-level query.
	WaitTimeout time.Duration
	// Submit enables clicking each form's submit control after its fields are processed.
	Submit bool
	// ActionsPerSecond paces field actions. Zero or less means unlimited.
	ActionsPerSecond float64
	// Now supplies the date injected into date inputs. Defaults to time.Now.
	Now func() time.Time
	// Setter overrides the value setter. Defaults to keyboard then script.
	Setter *ValueSetter
	// DateSetter overrides the value setter for date inputs. Defaults to
	// script then keyboard.
	DateSetter *ValueSetter
}

// Exerciser discovers the forms of a page and fills in every control.
// It is strictly sequential: one form, then one field at a time.
type Exerciser struct {
	page       Page
	opts       Options
	logger     *zap.Logger
	setter     *ValueSetter
	dateSetter *ValueSetter
	limiter    *rate.Limiter
}

// NewExerciser creates an Exerciser over page.
func NewExerciser(page Page, opts Options, logger *zap.Logger) *Exerciser {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("exerciser")
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = config.DefaultWaitTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Exerciser{page: page, opts: opts, logger: logger, setter: opts.Setter, dateSetter: opts.DateSetter}
	if e.setter == nil {
		e.setter = NewValueSetter(logger)
	}
	if e.dateSetter == nil {
		e.dateSetter = NewDateValueSetter(logger)
	}
	if opts.ActionsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.ActionsPerSecond), 1)
	}
	return e
}

// FindForms snapshots the forms of the page and logs how many were found.
// Deciding whether zero forms is a failure is left to the caller.
func (e *Exerciser) FindForms(ctx context.Context) ([]Form, error) {
	qctx, cancel := context.WithTimeout(ctx, e.opts.WaitTimeout)
	defer cancel()

	forms, err := e.page.Forms(qctx)
	if err != nil {
		return nil, fmt.Errorf("querying forms: %w", err)
	}
	e.logger.Info("Found forms on page.", zap.Int("count", len(forms)))
	return forms, nil
}

// Run exercises every form on the page in discovery order. It returns
// ErrNoForms when the page has no forms; failures on individual forms and
// fields are recorded in the report and never fail the run.
func (e *Exerciser) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), StartedAt: e.opts.Now()}
	defer func() { report.FinishedAt = e.opts.Now() }()

	forms, err := e.FindForms(ctx)
	if err != nil {
		return report, err
	}
	if len(forms) == 0 {
		e.logger.Error("No forms found on page.")
		return report, ErrNoForms
	}

	for i, form := range forms {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("Run interrupted.", zap.Int("forms_done", i), zap.Error(err))
			return report, err
		}
		report.Forms = append(report.Forms, e.ExerciseForm(ctx, i+1, form))
	}

	e.logger.Info("Run complete.",
		zap.String("run_id", report.RunID),
		zap.Int("forms", len(report.Forms)),
		zap.Int("fields", report.FieldCount()),
		zap.Int("failed", report.CountOutcome(OutcomeFailed)),
	)
	return report, nil
}

// ExerciseForm processes one form. idx is the 1-based position of the form
// in discovery order. Errors never escape: an enumeration failure ends this
// form only, and each field is guarded on its own.
func (e *Exerciser) ExerciseForm(ctx context.Context, idx int, form Form) (res FormResult) {
	res.Index = idx
	log := e.logger.With(zap.Int("form", idx))
	log.Info("Processing form.")

	defer func() {
		if r := recover(); r != nil {
			res.Error = fmt.Sprintf("panic: %v", r)
			log.Error("Form processing threw.", zap.Any("panic", r))
		}
	}()

	sctx, cancel := context.WithTimeout(ctx, e.opts.WaitTimeout)
	if err := form.ScrollIntoView(sctx); err != nil {
		log.Debug("Could not scroll form into view.", zap.Error(err))
	}
	cancel()

	fctx, cancel := context.WithTimeout(ctx, e.opts.WaitTimeout)
	fields, err := form.Fields(fctx)
	cancel()
	if err != nil {
		res.Error = err.Error()
		log.Warn("Form processing threw.", zap.Error(err))
		return res
	}
	log.Info("Fields found.", zap.Int("count", len(fields)))

	for i, field := range fields {
		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			return res
		}
		res.Fields = append(res.Fields, e.exerciseField(ctx, log, i+1, field))
	}

	if e.opts.Submit {
		res.Submitted = e.submit(ctx, log, form)
	}
	log.Info("Form done.")
	return res
}

func (e *Exerciser) exerciseField(ctx context.Context, log *zap.Logger, idx int, f Field) (res FieldResult) {
	name, id := attr(f, "name"), attr(f, "id")
	res = FieldResult{
		Index:      idx,
		Tag:        strings.ToLower(f.Tag()),
		Type:       strings.ToLower(strings.TrimSpace(attr(f, "type"))),
		Identifier: Identifier(name, id),
	}
	res.Action = Classify(res.Tag, res.Type)
	log = log.With(zap.String("name", res.Identifier))
	log.Info("Field found.",
		zap.String("tag", res.Tag),
		zap.String("type", res.Type),
		zap.Stringer("action", res.Action),
	)

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Error = fmt.Sprintf("panic: %v", r)
			log.Warn("Field action failed.", zap.Any("panic", r))
		}
	}()

	if res.Action.Skipped() {
		if res.Action == ActionSkipFile {
			log.Info("Skipping file input (unsafe).")
		}
		res.Outcome = OutcomeSkipped
		return res
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			res.Outcome = OutcomeFailed
			res.Error = err.Error()
			return res
		}
	}

	actx, cancel := context.WithTimeout(ctx, e.opts.WaitTimeout)
	defer cancel()
	if err := e.act(actx, log, f, name, id, &res); err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		log.Warn("Field action failed.", zap.Error(err))
	}
	return res
}

// act applies res.Action to f and records the outcome.
func (e *Exerciser) act(ctx context.Context, log *zap.Logger, f Field, name, id string, res *FieldResult) error {
	switch res.Action {
	case ActionFillText:
		e.fill(ctx, e.setter, f, TextValue(name, id), res)
	case ActionFillNumber:
		e.fill(ctx, e.setter, f, NumberValue, res)
	case ActionFillDate:
		e.fill(ctx, e.dateSetter, f, DateValue(e.opts.Now()), res)
	case ActionFillPassword:
		e.fill(ctx, e.setter, f, PasswordValue, res)
	case ActionFillNote:
		e.fill(ctx, e.setter, f, NoteValue, res)

	case ActionToggle:
		selected, err := f.Selected(ctx)
		if err != nil {
			return fmt.Errorf("reading selection state: %w", err)
		}
		if selected {
			res.Outcome = OutcomeAlreadySelected
			return nil
		}
		if err := f.Click(ctx); err != nil {
			return fmt.Errorf("clicking: %w", err)
		}
		res.Outcome = OutcomeToggled

	case ActionSelectOption:
		opts, err := f.Options(ctx)
		if err != nil {
			return fmt.Errorf("listing options: %w", err)
		}
		opt, ok := PickOption(opts)
		if !ok {
			res.Outcome = OutcomeNoOption
			return nil
		}
		if err := f.SelectByValue(ctx, opt.Value); err != nil {
			return fmt.Errorf("selecting %q: %w", opt.Value, err)
		}
		res.Value = opt.Value
		res.Outcome = OutcomeSelected
		log.Info("Selected option.", zap.String("label", opt.Label), zap.String("value", opt.Value))

	default:
		return fmt.Errorf("no handler for action %s", res.Action)
	}
	return nil
}

// fill runs setter; its failures are absorbed into the outcome.
func (e *Exerciser) fill(ctx context.Context, setter *ValueSetter, f Field, value string, res *FieldResult) {
	res.Value = value
	sr := setter.Set(ctx, f, value)
	switch {
	case sr.NotVisible:
		res.Outcome = OutcomeNotVisible
	case !sr.OK():
		res.Outcome = OutcomeUnmodified
		if err := sr.Err(); err != nil {
			res.Error = err.Error()
		}
	case sr.Strategy == (ScriptStrategy{}).Name():
		res.Outcome = OutcomeFilledByScript
	default:
		res.Outcome = OutcomeFilled
	}
}

func (e *Exerciser) submit(ctx context.Context, log *zap.Logger, form Form) bool {
	log.Info("Attempting form submit.")
	sctx, cancel := context.WithTimeout(ctx, e.opts.WaitTimeout)
	defer cancel()
	if err := form.Submit(sctx); err != nil {
		log.Warn("Submit failed.", zap.Error(err))
		return false
	}
	log.Info("Submit done.")
	return true
}
