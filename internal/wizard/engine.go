package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
)

// Engine is the wizard reducer. Every operation takes a state and returns a
// new one; the input state is never mutated.
type Engine struct {
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source for UpdatedAt stamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a wizard engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start creates a new session at step 1 with an empty draft.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.WizardState {
	s := domain.NewWizardState(sessionID)
	s.UpdatedAt = e.now()
	e.emit(ctx, e.hooks.OnStepEnter, domain.EventStepEnter, s, "", nil)
	return s
}

// Update edits one draft field. It never validates.
func (e *Engine) Update(ctx context.Context, state *domain.WizardState, field domain.Field, value string) (*domain.WizardState, error) {
	if err := requireStep(state, "update"); err != nil {
		return nil, err
	}
	draft, err := state.Draft.Set(field, value)
	if err != nil {
		return nil, err
	}
	next := state.Snapshot()
	next.Draft = draft
	next.UpdatedAt = e.now()
	return next, nil
}

// Next validates the active step and advances. At step 5 it opens the
// confirmation prompt; it never submits.
//
// When the required field is blank, the returned state carries the notice
// and the error is a *domain.ValidationError.
func (e *Engine) Next(ctx context.Context, state *domain.WizardState) (*domain.WizardState, error) {
	if err := requireStep(state, "next"); err != nil {
		return nil, err
	}
	spec, _ := StepFor(state.Phase)

	if spec.Required != "" && !state.Draft.Filled(spec.Required) {
		blocked := state.Snapshot()
		blocked.Notice = spec.Notice
		blocked.UpdatedAt = e.now()
		e.logger.Debug("validation blocked", "session_id", state.SessionID, "step", spec.Number, "field", spec.Required)
		e.emit(ctx, e.hooks.OnValidationBlocked, domain.EventValidationBlocked, blocked, spec.Required, nil)
		return blocked, &domain.ValidationError{Step: spec.Number, Field: spec.Required, Notice: spec.Notice}
	}

	target := domain.PhaseConfirming
	if spec.Number < domain.StepCount {
		target, _ = domain.PhaseForStep(spec.Number + 1)
	}
	return e.transition(ctx, state, target), nil
}

// Back returns to the previous step without validating.
func (e *Engine) Back(ctx context.Context, state *domain.WizardState) (*domain.WizardState, error) {
	if err := requireStep(state, "back"); err != nil {
		return nil, err
	}
	n, _ := state.Phase.Step()
	if n == 1 {
		return nil, fmt.Errorf("%w: already at the first step", domain.ErrInvalidTransition)
	}
	target, _ := domain.PhaseForStep(n - 1)
	return e.transition(ctx, state, target), nil
}

// Cancel dismisses the confirmation prompt and returns to step 5 with the draft intact.
func (e *Engine) Cancel(ctx context.Context, state *domain.WizardState) (*domain.WizardState, error) {
	if state == nil || state.Phase != domain.PhaseConfirming {
		return nil, invalid(state, "cancel")
	}
	next := e.transition(ctx, state, domain.PhaseStep5)
	next.LastError = ""
	return next, nil
}

// Confirm submits the draft through the gateway, exactly once per call.
//
// On success the state moves to submitted and holds the acknowledgement.
// On failure it stays in confirming with the draft untouched, LastError set,
// and a *domain.SubmissionError is returned. Confirming an already submitted
// state returns it unchanged without calling the gateway.
func (e *Engine) Confirm(ctx context.Context, state *domain.WizardState, gateway ports.SubmissionGateway) (*domain.WizardState, error) {
	if state != nil && state.Phase == domain.PhaseSubmitted {
		return state.Snapshot(), nil
	}
	if state == nil || state.Phase != domain.PhaseConfirming {
		return nil, invalid(state, "confirm")
	}
	if gateway == nil {
		return nil, errors.New("wizard: no submission gateway configured")
	}

	trust, err := gateway.Submit(ctx, ports.GatewayRequest{
		Draft:          state.Draft,
		IdempotencyKey: state.SessionID,
		OwnerID:        state.OwnerID,
	})
	if err == nil && trust == nil {
		err = errors.New("gateway returned no trust")
	}
	if err != nil {
		failure := &domain.SubmissionError{Cause: err}
		failed := state.Snapshot()
		failed.LastError = failure.Error()
		failed.UpdatedAt = e.now()
		e.logger.Warn("trust submission failed", "session_id", state.SessionID, "err", err)
		e.emit(ctx, e.hooks.OnSubmitFailed, domain.EventSubmitFailed, failed, "", err)
		return failed, failure
	}

	done := e.transition(ctx, state, domain.PhaseSubmitted)
	done.LastError = ""
	ack := *trust
	done.Submission = &ack
	e.logger.Info("trust submitted", "session_id", state.SessionID, "trust_id", trust.ID)
	e.emit(ctx, e.hooks.OnSubmit, domain.EventSubmit, done, "", nil)
	return done, nil
}

// Respond interprets an answer to the confirmation prompt.
// An explicit affirmative is required: a blank answer cancels.
func (e *Engine) Respond(ctx context.Context, state *domain.WizardState, answer string, gateway ports.SubmissionGateway) (*domain.WizardState, error) {
	yes, err := ParseConfirm(answer)
	if err != nil {
		return nil, err
	}
	if yes {
		return e.Confirm(ctx, state, gateway)
	}
	return e.Cancel(ctx, state)
}

func (e *Engine) transition(ctx context.Context, state *domain.WizardState, target domain.Phase) *domain.WizardState {
	e.emit(ctx, e.hooks.OnStepLeave, domain.EventStepLeave, state, "", nil)

	next := state.Snapshot()
	next.Phase = target
	next.Notice = ""
	next.History = append(next.History, target)
	next.UpdatedAt = e.now()

	e.logger.Debug("wizard transition", "session_id", state.SessionID, "from", state.Phase, "to", target)
	e.emit(ctx, e.hooks.OnStepEnter, domain.EventStepEnter, next, "", nil)
	return next
}

func (e *Engine) emit(ctx context.Context, hook func(context.Context, *domain.WizardEvent), typ domain.EventType, s *domain.WizardState, field domain.Field, err error) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.WizardEvent{
		Timestamp: e.now(),
		Type:      typ,
		SessionID: s.SessionID,
		Phase:     s.Phase,
		Field:     field,
		Err:       err,
	})
}

func requireStep(state *domain.WizardState, op string) error {
	if state == nil || !state.Phase.IsStep() {
		return invalid(state, op)
	}
	return nil
}

func invalid(state *domain.WizardState, op string) error {
	if state == nil {
		return fmt.Errorf("%w: %s on nil state", domain.ErrInvalidTransition, op)
	}
	return fmt.Errorf("%w: cannot %s while %s", domain.ErrInvalidTransition, op, state.Phase)
}
