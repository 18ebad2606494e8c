package http

import (
	"errors"
	"net/http"

	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/advisor"
	"github.com/livingtrust/livingtrust/pkg/auth"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/runner"
)

// badRequest carries a client-facing message for malformed input.
type badRequest struct {
	msg string
	err error
}

func (e *badRequest) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *badRequest) Unwrap() error { return e.err }

// statusFor maps domain and adapter errors to HTTP statuses.
func statusFor(err error) int {
	var br *badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrValidationBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSubmissionFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidTrustType),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, advisor.ErrEmptyInput),
		errors.Is(err, wizard.ErrInvalidAnswer),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, advisor.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, advisor.ErrUpstream), errors.Is(err, advisor.ErrInvalidOutput):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// resource names the record kind in 404 messages.
type resource string

const (
	resTrust    resource = "Trust"
	resDocument resource = "Document"
	resUser     resource = "User"
	resSession  resource = "Session"
)

// fail writes err with its mapped status. Unexpected server errors are
// logged and replaced by a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, res resource) {
	status := statusFor(err)
	msg := err.Error()
	var br *badRequest
	switch {
	case errors.As(err, &br):
		msg = br.msg
	case status == http.StatusNotFound:
		msg = string(res) + " not found"
	case errors.Is(err, domain.ErrSubmissionFailed):
		// The message tells the user their answers are kept.
	case errors.Is(err, advisor.ErrTimeout):
		msg = "The AI advisor took too long to answer, please try again"
	case errors.Is(err, advisor.ErrUpstream), errors.Is(err, advisor.ErrInvalidOutput):
		s.Logger.Warn("advisor failed", "path", r.URL.Path, "err", err)
		msg = "Failed to get AI response"
	case status >= 500:
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
		msg = "Something went wrong!"
	}
	writeError(w, status, msg)
}
