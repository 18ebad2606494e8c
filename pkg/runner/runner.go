package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/domain"
)

// Commands accepted at a field prompt.
const (
	CommandBack = ":back"
	CommandQuit = ":quit"
)

var (
	// ErrInterrupted is returned when the user quits or input ends before
	// the trust is created. The session is kept in the store.
	ErrInterrupted = errors.New("wizard interrupted")
)

// Wizard is the session API the runner drives. *session.Manager and the
// root Engine implement it.
type Wizard interface {
	Start(ctx context.Context, ownerID string) (*domain.WizardState, error)
	Load(ctx context.Context, sessionID string) (*domain.WizardState, error)
	Update(ctx context.Context, sessionID string, field domain.Field, value string) (*domain.WizardState, error)
	Next(ctx context.Context, sessionID string) (*domain.WizardState, error)
	Back(ctx context.Context, sessionID string) (*domain.WizardState, error)
	Respond(ctx context.Context, sessionID, answer string) (*domain.WizardState, error)
	Discard(ctx context.Context, sessionID string) error
}

// Result is the outcome of a Run.
type Result struct {
	SessionID string
	Trust     *domain.Trust
}

// Runner handles the execution loop of one wizard session using an IOHandler.
type Runner struct {
	Handler       IOHandler
	Logger        *slog.Logger
	SessionID     string
	OwnerID       string
	HandleSignals bool
}

// NewRunner creates a Runner reading stdin and writing stdout by default.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run drives the session until the trust is created. On success the session
// is discarded. On ErrInterrupted the Result still carries the session ID.
func (r *Runner) Run(ctx context.Context, w Wizard) (*Result, error) {
	var signals *SignalManager
	if r.HandleSignals {
		signals = NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	state, err := r.resolveSession(ctx, w)
	if err != nil {
		return nil, err
	}
	res := &Result{SessionID: state.SessionID}
	r.Logger.Debug("wizard run started", "session_id", state.SessionID, "phase", state.Phase)

	var shown domain.Phase
	for {
		if state.Phase != shown {
			if err := r.enter(ctx, state); err != nil {
				return res, err
			}
			shown = state.Phase
		}

		var next *domain.WizardState
		switch {
		case state.Phase.IsStep():
			next, err = r.fillStep(ctx, w, state)
		case state.Phase == domain.PhaseConfirming:
			next, err = r.confirm(ctx, w, state)
		case state.Phase == domain.PhaseSubmitted:
			res.Trust = state.Submission
			if err := r.Handler.Output(ctx, Event{Kind: EventDone, Phase: state.Phase, Text: wizard.SuccessMessage(state.Submission), Trust: state.Submission}); err != nil {
				return res, err
			}
			if err := w.Discard(context.WithoutCancel(ctx), state.SessionID); err != nil {
				r.Logger.Warn("failed to discard finished session", "session_id", state.SessionID, "err", err)
			}
			return res, nil
		default:
			return res, fmt.Errorf("%w: unknown phase %q", domain.ErrInvalidTransition, state.Phase)
		}
		if err != nil {
			if signals != nil {
				signals.CheckRace()
			}
			if isInterrupt(ctx, err) {
				_ = r.Handler.SystemOutput(context.WithoutCancel(ctx), fmt.Sprintf("Progress saved. Resume with --session %s", state.SessionID))
				return res, ErrInterrupted
			}
			return res, err
		}
		state = next
	}
}

func (r *Runner) resolveSession(ctx context.Context, w Wizard) (*domain.WizardState, error) {
	if r.SessionID == "" {
		return w.Start(ctx, r.OwnerID)
	}
	state, err := w.Load(ctx, r.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
	}
	return state, nil
}

func (r *Runner) enter(ctx context.Context, state *domain.WizardState) error {
	if spec, ok := wizard.StepFor(state.Phase); ok {
		return r.Handler.Output(ctx, Event{Kind: EventStep, Phase: state.Phase, Step: &spec})
	}
	return nil
}

// fillStep asks every field of the active step, then calls Next.
// A blocked Next prints the notice and returns the unchanged state, so the
// loop asks the step again.
func (r *Runner) fillStep(ctx context.Context, w Wizard, state *domain.WizardState) (*domain.WizardState, error) {
	spec, _ := wizard.StepFor(state.Phase)
	for _, field := range spec.Fields {
		prompt := wizard.PromptFor(field)
		err := r.Handler.Output(ctx, Event{
			Kind:        EventPrompt,
			Phase:       state.Phase,
			Field:       field,
			Text:        prompt.Label,
			Placeholder: prompt.Placeholder,
			Current:     state.Draft.Get(field),
		})
		if err != nil {
			return nil, err
		}
		answer, err := r.Handler.Input(ctx)
		if err != nil {
			return nil, err
		}

		switch answer {
		case CommandQuit, "exit", "quit":
			return nil, ErrInterrupted
		case CommandBack:
			back, err := w.Back(ctx, state.SessionID)
			if errors.Is(err, domain.ErrInvalidTransition) {
				_ = r.Handler.Output(ctx, Event{Kind: EventError, Phase: state.Phase, Text: "Already at the first step."})
				return state, nil
			}
			return back, err
		case "":
			continue
		}

		if prompt.Multiline {
			answer = strings.ReplaceAll(answer, `\n`, "\n")
		}
		updated, err := w.Update(ctx, state.SessionID, field, answer)
		if errors.Is(err, domain.ErrInvalidTrustType) {
			if oerr := r.Handler.Output(ctx, Event{Kind: EventError, Phase: state.Phase, Field: field, Text: err.Error()}); oerr != nil {
				return nil, oerr
			}
			return state, nil
		}
		if err != nil {
			return nil, err
		}
		state = updated
	}

	next, err := w.Next(ctx, state.SessionID)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		r.Logger.Debug("step blocked", "session_id", state.SessionID, "field", verr.Field)
		if oerr := r.Handler.Output(ctx, Event{Kind: EventNotice, Phase: state.Phase, Field: verr.Field, Text: verr.Notice}); oerr != nil {
			return nil, oerr
		}
		return next, nil
	}
	return next, err
}

// confirm shows the summary and reads a y/N answer. Invalid answers and
// failed submissions ask again with the draft intact.
func (r *Runner) confirm(ctx context.Context, w Wizard, state *domain.WizardState) (*domain.WizardState, error) {
	view := wizard.ViewOf(state)
	summary := "## " + view.Confirm.Title + "\n\n" + view.Summary + "\n" + view.Confirm.Message
	if err := r.Handler.Output(ctx, Event{Kind: EventSummary, Phase: state.Phase, Text: summary}); err != nil {
		return nil, err
	}
	if err := r.Handler.Output(ctx, Event{Kind: EventPrompt, Phase: state.Phase, Text: wizard.ConfirmTitle + " [y/N]"}); err != nil {
		return nil, err
	}
	answer, err := r.Handler.Input(ctx)
	if err != nil {
		return nil, err
	}
	if answer == CommandQuit {
		return nil, ErrInterrupted
	}

	next, err := w.Respond(ctx, state.SessionID, answer)
	switch {
	case errors.Is(err, wizard.ErrInvalidAnswer):
		return state, r.Handler.Output(ctx, Event{Kind: EventError, Phase: state.Phase, Text: "Please answer y or n."})
	case errors.Is(err, domain.ErrSubmissionFailed):
		r.Logger.Warn("submission failed", "session_id", state.SessionID, "err", err)
		return next, r.Handler.Output(ctx, Event{Kind: EventError, Phase: next.Phase, Text: next.LastError})
	case err != nil:
		return nil, err
	}
	return next, nil
}

func isInterrupt(ctx context.Context, err error) bool {
	return errors.Is(err, ErrInterrupted) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		ctx.Err() != nil
}
