package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/auth"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/runner"
)

func (s *Server) listSteps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"steps": wizard.Steps()})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	caller := auth.UserID(r.Context())
	visibleIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		st, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			continue
		}
		if visible(st.OwnerID, caller) {
			visibleIDs = append(visibleIDs, id)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": visibleIDs})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.Sessions.Start(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	writeJSON(w, http.StatusCreated, wizard.ViewOf(st))
}

// ownedSession checks that the caller may act on session id.
func (s *Server) ownedSession(r *http.Request, id string) (string, error) {
	st, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		return "", err
	}
	if !visible(st.OwnerID, auth.UserID(r.Context())) {
		return "", domain.ErrSessionNotFound
	}
	return id, nil
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.ownedSession(r, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	st, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	writeJSON(w, http.StatusOK, wizard.ViewOf(st))
}

func (s *Server) discardSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.ownedSession(r, chi.URLParam(r, "id"))
	if err == nil {
		err = s.Sessions.Discard(r.Context(), id)
	}
	if err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateDraft(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	field, err := domain.ParseField(body.Field)
	if err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	value, err := runner.SanitizeInput(body.Value)
	if err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	s.transition(w, r, func(id string) (*domain.WizardState, error) {
		return s.Sessions.Update(r.Context(), id, field, value)
	})
}

func (s *Server) nextStep(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(id string) (*domain.WizardState, error) {
		return s.Sessions.Next(r.Context(), id)
	})
}

func (s *Server) previousStep(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(id string) (*domain.WizardState, error) {
		return s.Sessions.Back(r.Context(), id)
	})
}

func (s *Server) cancelConfirm(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(id string) (*domain.WizardState, error) {
		return s.Sessions.Cancel(r.Context(), id)
	})
}

func (s *Server) confirmSubmit(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(id string) (*domain.WizardState, error) {
		return s.Sessions.Confirm(r.Context(), id)
	})
}

func (s *Server) respondConfirm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Answer string `json:"answer"`
	}
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	s.transition(w, r, func(id string) (*domain.WizardState, error) {
		return s.Sessions.Respond(r.Context(), id, body.Answer)
	})
}

// transition runs op on the session in the URL. Blocked validations (422)
// and failed submissions (502) still return the persisted state.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, op func(id string) (*domain.WizardState, error)) {
	id, err := s.ownedSession(r, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	st, err := op(id)
	if err != nil && st != nil &&
		(errors.Is(err, domain.ErrValidationBlocked) || errors.Is(err, domain.ErrSubmissionFailed)) {
		view := wizard.ViewOf(st)
		view.Error = err.Error()
		writeJSON(w, statusFor(err), view)
		return
	}
	if err != nil {
		s.fail(w, r, err, resSession)
		return
	}
	writeJSON(w, http.StatusOK, wizard.ViewOf(st))
}
