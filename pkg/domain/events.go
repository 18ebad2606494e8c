package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter         EventType = "step_enter"
	EventStepLeave         EventType = "step_leave"
	EventValidationBlocked EventType = "validation_blocked"
	EventSubmit            EventType = "submit"
	EventSubmitFailed      EventType = "submit_failed"
)

// WizardEvent describes one wizard transition.
type WizardEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Phase     Phase     `json:"phase"`
	// Field is set for validation events.
	Field Field `json:"field,omitempty"`
	// Err is set for failed submissions.
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for wizard observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnStepEnter         func(context.Context, *WizardEvent)
	OnStepLeave         func(context.Context, *WizardEvent)
	OnValidationBlocked func(context.Context, *WizardEvent)
	OnSubmit            func(context.Context, *WizardEvent)
	OnSubmitFailed      func(context.Context, *WizardEvent)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:         chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:         chain(h.OnStepLeave, other.OnStepLeave),
		OnValidationBlocked: chain(h.OnValidationBlocked, other.OnValidationBlocked),
		OnSubmit:            chain(h.OnSubmit, other.OnSubmit),
		OnSubmitFailed:      chain(h.OnSubmitFailed, other.OnSubmitFailed),
	}
}

func chain(a, b func(context.Context, *WizardEvent)) func(context.Context, *WizardEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *WizardEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
