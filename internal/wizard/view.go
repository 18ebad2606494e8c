package wizard

import "github.com/livingtrust/livingtrust/pkg/domain"

// Prompt texts of the confirmation dialog.
type ConfirmPrompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// View is what a client needs to render a session: the state plus the
// active step, or the summary and prompt while confirming.
type View struct {
	State   *domain.WizardState `json:"state"`
	Step    *domain.StepSpec    `json:"step,omitempty"`
	Summary string              `json:"summary,omitempty"`
	Confirm *ConfirmPrompt      `json:"confirm,omitempty"`
	// Error repeats the notice or submission failure of a rejected operation.
	Error string `json:"error,omitempty"`
}

// ViewOf builds the view of s.
func ViewOf(s *domain.WizardState) View {
	v := View{State: s}
	if s == nil {
		return v
	}
	if spec, ok := StepFor(s.Phase); ok {
		v.Step = &spec
	}
	if s.Phase == domain.PhaseConfirming || s.Phase == domain.PhaseSubmitted {
		v.Summary = Summary(s.Draft)
	}
	if s.Phase == domain.PhaseConfirming {
		v.Confirm = &ConfirmPrompt{Title: ConfirmTitle, Message: ConfirmMessage(s.Draft)}
	}
	return v
}
