// Package tui renders the wizard as interactive terminal forms.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/runner"
)

// Wizard is the session API driven by the forms.
type Wizard interface {
	runner.Wizard
	Cancel(ctx context.Context, sessionID string) (*domain.WizardState, error)
	Confirm(ctx context.Context, sessionID string) (*domain.WizardState, error)
}

// Step form actions.
const (
	actionNext = "next"
	actionBack = "back"
	actionQuit = "quit"
)

// Options configures Run.
type Options struct {
	SessionID string
	OwnerID   string
	Out       io.Writer
	Renderer  runner.ContentRenderer
	Logger    *slog.Logger
	// Accessible replaces the full-screen forms with plain prompts.
	Accessible bool
}

// Run drives one session with huh forms until the trust is created.
// Aborting a form saves the session and returns runner.ErrInterrupted.
func Run(ctx context.Context, w Wizard, opts Options) (*runner.Result, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	out := opts.Out

	var state *domain.WizardState
	var err error
	if opts.SessionID != "" {
		state, err = w.Load(ctx, opts.SessionID)
	} else {
		state, err = w.Start(ctx, opts.OwnerID)
	}
	if err != nil {
		return nil, err
	}

	interrupted := func() (*runner.Result, error) {
		fmt.Fprintln(out, StyleDim.Render("Progress saved. Resume with --session "+state.SessionID))
		return &runner.Result{SessionID: state.SessionID}, runner.ErrInterrupted
	}

	for {
		switch {
		case state.Phase.IsStep():
			spec, _ := wizard.StepFor(state.Phase)
			sf := newStepForm(spec, state.Draft, state.Notice, opts.Renderer)
			if err := run(ctx, sf.form, opts); err != nil {
				if aborted(ctx, err) {
					return interrupted()
				}
				return nil, err
			}

			state, err = sf.apply(ctx, w, state)
			if err != nil {
				return nil, err
			}

			var next *domain.WizardState
			switch sf.action {
			case actionQuit:
				return interrupted()
			case actionBack:
				next, err = w.Back(ctx, state.SessionID)
			default:
				next, err = w.Next(ctx, state.SessionID)
			}
			if errors.Is(err, domain.ErrValidationBlocked) && next != nil {
				fmt.Fprintln(out, StyleNotice.Render("! "+next.Notice))
				state = next
				continue
			}
			if err != nil {
				return nil, err
			}
			state = next

		case state.Phase == domain.PhaseConfirming:
			fmt.Fprintln(out, StyleSummary.Render(strings.TrimRight(wizard.Summary(state.Draft), "\n")))
			if state.LastError != "" {
				fmt.Fprintln(out, StyleError.Render(state.LastError))
			}

			var yes bool
			if err := run(ctx, confirmForm(state.Draft, &yes), opts); err != nil {
				if aborted(ctx, err) {
					return interrupted()
				}
				return nil, err
			}

			var next *domain.WizardState
			if yes {
				next, err = w.Confirm(ctx, state.SessionID)
			} else {
				next, err = w.Cancel(ctx, state.SessionID)
			}
			if errors.Is(err, domain.ErrSubmissionFailed) && next != nil {
				opts.Logger.Warn("trust submission failed", "session_id", state.SessionID, "err", err)
				state = next
				continue
			}
			if err != nil {
				return nil, err
			}
			state = next

		case state.Phase == domain.PhaseSubmitted:
			fmt.Fprintln(out, StyleSuccess.Render(wizard.SuccessMessage(state.Submission)))
			if err := w.Discard(context.WithoutCancel(ctx), state.SessionID); err != nil {
				opts.Logger.Warn("failed to discard finished session", "session_id", state.SessionID, "err", err)
			}
			return &runner.Result{SessionID: state.SessionID, Trust: state.Submission}, nil

		default:
			return nil, fmt.Errorf("%w: unknown phase %q", domain.ErrInvalidTransition, state.Phase)
		}
	}
}

func run(ctx context.Context, f *huh.Form, opts Options) error {
	return f.WithOutput(opts.Out).WithAccessible(opts.Accessible).RunWithContext(ctx)
}

func aborted(ctx context.Context, err error) bool {
	return errors.Is(err, huh.ErrUserAborted) || errors.Is(err, huh.ErrTimeout) || ctx.Err() != nil
}

// stepForm binds one step's fields to huh inputs.
type stepForm struct {
	spec   domain.StepSpec
	values map[domain.Field]*string
	action string
	form   *huh.Form
}

func newStepForm(spec domain.StepSpec, d domain.TrustDraft, notice string, render runner.ContentRenderer) *stepForm {
	sf := &stepForm{
		spec:   spec,
		values: make(map[domain.Field]*string, len(spec.Fields)),
		action: actionNext,
	}

	desc := spec.Info
	if desc != "" && render != nil {
		if rendered, err := render(desc); err == nil {
			desc = strings.TrimSpace(rendered)
		}
	}
	if notice != "" {
		desc = strings.TrimSpace(desc + "\n" + StyleNotice.Render(notice))
	}

	fields := make([]huh.Field, 0, len(spec.Fields)+1)
	if desc != "" {
		fields = append(fields, huh.NewNote().
			Title(fmt.Sprintf("Step %d of %d: %s", spec.Number, domain.StepCount, spec.Title)).
			Description(desc))
	}
	for _, f := range spec.Fields {
		v := d.Get(f)
		sf.values[f] = &v
		fields = append(fields, fieldInput(f, &v))
	}
	fields = append(fields, huh.NewSelect[string]().
		Title("Continue").
		Options(actionOptions(spec.Number)...).
		Value(&sf.action))

	group := huh.NewGroup(fields...)
	if desc == "" {
		group = group.Title(fmt.Sprintf("Step %d of %d: %s", spec.Number, domain.StepCount, spec.Title))
	}
	sf.form = huh.NewForm(group).WithTheme(HuhTheme()).WithShowHelp(false)
	return sf
}

func fieldInput(f domain.Field, value *string) huh.Field {
	p := wizard.PromptFor(f)
	switch {
	case f == domain.FieldTrustType:
		return huh.NewSelect[string]().
			Title(p.Label).
			Options(
				huh.NewOption("Revocable Living Trust", string(domain.TrustRevocable)),
				huh.NewOption("Irrevocable Trust", string(domain.TrustIrrevocable)),
			).
			Value(value)
	case p.Multiline:
		return huh.NewText().
			Title(p.Label).
			Placeholder(p.Placeholder).
			Lines(4).
			Value(value)
	default:
		return huh.NewInput().
			Title(p.Label).
			Placeholder(p.Placeholder).
			Value(value)
	}
}

func actionOptions(step int) []huh.Option[string] {
	label := "Next"
	if step == domain.StepCount {
		label = "Review and create"
	}
	opts := []huh.Option[string]{huh.NewOption(label, actionNext)}
	if step > 1 {
		opts = append(opts, huh.NewOption("Back", actionBack))
	}
	return append(opts, huh.NewOption("Save and quit", actionQuit))
}

// apply sends the edited fields to the session.
func (sf *stepForm) apply(ctx context.Context, w Wizard, state *domain.WizardState) (*domain.WizardState, error) {
	for _, f := range sf.spec.Fields {
		v, err := runner.SanitizeInput(*sf.values[f])
		if err != nil {
			return nil, err
		}
		if v == state.Draft.Get(f) {
			continue
		}
		state, err = w.Update(ctx, state.SessionID, f, v)
		if err != nil {
			return nil, err
		}
	}
	return state, nil
}

func confirmForm(d domain.TrustDraft, yes *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(wizard.ConfirmTitle).
				Description(wizard.ConfirmMessage(d)).
				Affirmative("Create").
				Negative("Cancel").
				Value(yes),
		),
	).WithTheme(HuhTheme()).WithShowHelp(false)
}
