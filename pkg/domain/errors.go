package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidationBlocked is matched by every *ValidationError.
	ErrValidationBlocked = errors.New("required field missing")

	// ErrSubmissionFailed is matched by every *SubmissionError.
	ErrSubmissionFailed = errors.New("trust submission failed")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotFound is returned by repositories for missing records.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique key is taken.
	ErrAlreadyExists = errors.New("already exists")

	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidTransition is returned when an operation is not allowed in the current phase.
	ErrInvalidTransition = errors.New("invalid transition")

	ErrUnknownField     = errors.New("unknown field")
	ErrInvalidTrustType = errors.New("trust type must be revocable or irrevocable")
)

// ValidationError reports a required field left blank on Next.
// Its message is the user-facing notice.
type ValidationError struct {
	Step   int
	Field  Field
	Notice string
}

func (e *ValidationError) Error() string {
	return e.Notice
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationBlocked
}

// SubmissionError wraps a gateway failure during Confirm.
// The draft is kept so the user can retry.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("could not create your trust (%v). Your answers are saved; please try again.", e.Cause)
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}
