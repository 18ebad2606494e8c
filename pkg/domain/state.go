package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Phase is the active position of a wizard session.
type Phase string

const (
	PhaseStep1      Phase = "step1"
	PhaseStep2      Phase = "step2"
	PhaseStep3      Phase = "step3"
	PhaseStep4      Phase = "step4"
	PhaseStep5      Phase = "step5"
	PhaseConfirming Phase = "confirming" // confirmation prompt is visible
	PhaseSubmitted  Phase = "submitted"  // gateway acknowledged the trust
)

// StepCount is the number of form steps.
const StepCount = 5

// PhaseForStep converts a 1-based step number to its Phase.
func PhaseForStep(n int) (Phase, error) {
	if n < 1 || n > StepCount {
		return "", fmt.Errorf("%w: step %d out of range", ErrInvalidTransition, n)
	}
	return Phase("step" + strconv.Itoa(n)), nil
}

// Step returns the step number for a form phase.
// The second result is false for confirming and submitted.
func (p Phase) Step() (int, bool) {
	s, ok := strings.CutPrefix(string(p), "step")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > StepCount {
		return 0, false
	}
	return n, true
}

// IsStep reports whether the phase is one of the five form steps.
func (p Phase) IsStep() bool {
	_, ok := p.Step()
	return ok
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p.IsStep() || p == PhaseConfirming || p == PhaseSubmitted
}

// StepSpec describes one form step.
type StepSpec struct {
	Number   int     `json:"number"`
	Phase    Phase   `json:"phase"`
	Title    string  `json:"title"`
	Fields   []Field `json:"fields"`
	Required Field   `json:"required,omitempty"`
	// Notice is shown when Required is blank on Next.
	Notice string `json:"notice,omitempty"`
	// Info is static guidance displayed with the step.
	Info string `json:"info,omitempty"`
}

// WizardState is the snapshot of a single wizard session.
type WizardState struct {
	SessionID string     `json:"sessionId"`
	Phase     Phase      `json:"phase"`
	Draft     TrustDraft `json:"draft"`

	// OwnerID is the authenticated user that started the session, if any.
	OwnerID string `json:"ownerId,omitempty"`

	// Notice is the last required-field message. Cleared on the next successful transition.
	Notice string `json:"notice,omitempty"`

	// LastError is the last submission failure message. Cleared on success or cancel.
	LastError string `json:"lastError,omitempty"`

	// Submission is the gateway acknowledgement, set once Phase is submitted.
	Submission *Trust `json:"submission,omitempty"`

	// History lists the phases visited, oldest first.
	History []Phase `json:"history,omitempty"`

	// Sealed holds the encrypted state written by an encrypting store.
	// When set, the draft and messages of the envelope are blank.
	Sealed []byte `json:"sealed,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// NewWizardState creates a fresh session at step 1.
func NewWizardState(sessionID string) *WizardState {
	return &WizardState{
		SessionID: sessionID,
		Phase:     PhaseStep1,
		Draft:     NewDraft(),
		History:   []Phase{PhaseStep1},
		UpdatedAt: time.Now().UTC(),
	}
}

// Snapshot returns a deep copy of the state.
func (s *WizardState) Snapshot() *WizardState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Submission != nil {
		sub := *s.Submission
		out.Submission = &sub
	}
	if s.History != nil {
		out.History = append([]Phase(nil), s.History...)
	}
	if s.Sealed != nil {
		out.Sealed = append([]byte(nil), s.Sealed...)
	}
	return &out
}
