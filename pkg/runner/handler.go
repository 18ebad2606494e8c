package runner

import (
	"context"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

// EventKind tells a handler what an Event carries.
type EventKind string

const (
	EventStep    EventKind = "step"    // a step was entered
	EventPrompt  EventKind = "prompt"  // an answer is expected next
	EventNotice  EventKind = "notice"  // a required field blocked Next
	EventSummary EventKind = "summary" // the draft summary before confirming
	EventError   EventKind = "error"   // the last answer or submission failed
	EventDone    EventKind = "done"    // the trust was created
)

// Event is one thing the runner wants shown.
type Event struct {
	Kind  EventKind        `json:"kind"`
	Phase domain.Phase     `json:"phase,omitempty"`
	Step  *domain.StepSpec `json:"step,omitempty"`
	Field domain.Field     `json:"field,omitempty"`
	// Text is the prompt label, notice, summary or message.
	Text        string        `json:"text,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	Current     string        `json:"current,omitempty"`
	Trust       *domain.Trust `json:"trust,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text and JSON modes.
type IOHandler interface {
	// Output presents an event.
	Output(ctx context.Context, ev Event) error

	// Input reads one answer. It returns ctx.Err() when ctx is done and
	// io.EOF when the input is exhausted.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message, e.g. how to resume a session.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is printed.
// This allows TUI rendering without coupling this package to a terminal library.
type ContentRenderer func(string) (string, error)
