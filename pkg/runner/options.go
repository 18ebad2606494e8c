package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithSessionID resumes the session with this ID instead of starting a new one.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithOwner sets the owner of a newly started session.
func WithOwner(ownerID string) Option {
	return func(r *Runner) {
		r.OwnerID = ownerID
	}
}

// WithSignals makes Ctrl+C end the run with ErrInterrupted instead of
// killing the process, so the session stays resumable.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.HandleSignals = enabled
	}
}
