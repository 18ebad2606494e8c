package domain

// StateDiff represents the changes between two wizard states.
// It is serialized to JSON for partial updates on streaming clients.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Phase *Phase `json:"phase,omitempty"`

	// Draft contains only the fields whose value changed.
	Draft map[string]string `json:"draft,omitempty"`

	// Notice and LastError are sent when they change; an empty string means cleared.
	Notice    *string `json:"notice,omitempty"`
	LastError *string `json:"last_error,omitempty"`

	Submission *Trust `json:"submission,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *WizardState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.Phase != newState.Phase {
		p := newState.Phase
		diff.Phase = &p
	}
	if oldState == nil {
		if newState.Notice != "" {
			diff.Notice = &newState.Notice
		}
		if newState.LastError != "" {
			diff.LastError = &newState.LastError
		}
	} else {
		if oldState.Notice != newState.Notice {
			diff.Notice = &newState.Notice
		}
		if oldState.LastError != newState.LastError {
			diff.LastError = &newState.LastError
		}
	}
	if newState.Submission != nil && (oldState == nil || oldState.Submission == nil) {
		diff.Submission = newState.Submission
	}

	diff.Draft = diffDraft(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffDraft(old, new *WizardState) map[string]string {
	delta := make(map[string]string)
	for _, f := range Fields {
		v := new.Draft.Get(f)
		if old == nil || old.Draft.Get(f) != v {
			delta[string(f)] = v
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Phase == nil &&
		d.Notice == nil &&
		d.LastError == nil &&
		d.Submission == nil &&
		len(d.Draft) == 0
}
