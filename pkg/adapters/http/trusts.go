package http

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/livingtrust/livingtrust/pkg/auth"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
	"github.com/livingtrust/livingtrust/pkg/runner"
	"github.com/oapi-codegen/runtime"
)

// trustPatch holds the fields a PUT may change. Absent fields are kept.
type trustPatch struct {
	TrustName        *string             `json:"trustName"`
	TrustType        *string             `json:"trustType"`
	GrantorName      *string             `json:"grantorName"`
	GrantorAddress   *string             `json:"grantorAddress"`
	Beneficiaries    *string             `json:"beneficiaries"`
	SuccessorTrustee *string             `json:"successorTrustee"`
	Assets           *string             `json:"assets"`
	Notes            *string             `json:"notes"`
	Status           *domain.TrustStatus `json:"status"`
}

func (p trustPatch) values() map[domain.Field]*string {
	return map[domain.Field]*string{
		domain.FieldTrustName:        p.TrustName,
		domain.FieldTrustType:        p.TrustType,
		domain.FieldGrantorName:      p.GrantorName,
		domain.FieldGrantorAddress:   p.GrantorAddress,
		domain.FieldBeneficiaries:    p.Beneficiaries,
		domain.FieldSuccessorTrustee: p.SuccessorTrustee,
		domain.FieldAssets:           p.Assets,
		domain.FieldNotes:            p.Notes,
	}
}

// apply sanitizes and sets every present field on d.
func (p trustPatch) apply(d domain.TrustDraft) (domain.TrustDraft, error) {
	for _, f := range domain.Fields {
		v := p.values()[f]
		if v == nil {
			continue
		}
		clean, err := runner.SanitizeInput(*v)
		if err != nil {
			return d, &badRequest{msg: "Invalid " + f.Label() + ": " + err.Error(), err: err}
		}
		if f == domain.FieldTrustType && clean == "" {
			continue
		}
		if d, err = d.Set(f, clean); err != nil {
			return d, err
		}
	}
	return d, nil
}

func (s *Server) createTrust(w http.ResponseWriter, r *http.Request) {
	var body trustPatch
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	draft, err := body.apply(domain.NewDraft())
	if err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	trust, err := s.Gateway.Submit(r.Context(), ports.GatewayRequest{
		Draft:          draft,
		IdempotencyKey: r.Header.Get(domain.HeaderIdempotencyKey),
		OwnerID:        auth.UserID(r.Context()),
	})
	if err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Trust created successfully",
		"trust":   trust,
	})
}

func (s *Server) listTrusts(w http.ResponseWriter, r *http.Request) {
	var status string
	if err := runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &status); err != nil {
		s.fail(w, r, &badRequest{msg: "Invalid status parameter", err: err}, resTrust)
		return
	}
	filter := domain.TrustFilter{OwnerID: auth.UserID(r.Context()), Status: domain.TrustStatus(status)}
	if status != "" && !filter.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status: "+status)
		return
	}
	trusts, err := s.Trusts.List(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	if filter.OwnerID == "" {
		// Anonymous callers only see anonymous trusts.
		trusts = slices.DeleteFunc(trusts, func(t *domain.Trust) bool { return t.OwnerID != "" })
	}
	writeJSON(w, http.StatusOK, map[string]any{"trusts": trusts})
}

// ownedTrust loads a trust visible to the caller. Another user's trust is reported missing.
func (s *Server) ownedTrust(r *http.Request) (*domain.Trust, error) {
	t, err := s.Trusts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if !visible(t.OwnerID, auth.UserID(r.Context())) {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// visible reports whether a record owned by owner may be read by caller.
// Anonymous records are public.
func visible(owner, caller string) bool {
	return owner == "" || owner == caller
}

func (s *Server) getTrust(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownedTrust(r)
	if err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trust": t})
}

func (s *Server) updateTrust(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownedTrust(r)
	if err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	var body trustPatch
	if err := decode(w, r, &body); err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	if t.TrustDraft, err = body.apply(t.TrustDraft); err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	if body.Status != nil {
		if !body.Status.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid status: "+string(*body.Status))
			return
		}
		t.Status = *body.Status
	}
	t.UpdatedAt = s.now()
	if err := s.Trusts.Update(r.Context(), t); err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Trust updated successfully",
		"trust":   t,
	})
}

func (s *Server) deleteTrust(w http.ResponseWriter, r *http.Request) {
	t, err := s.ownedTrust(r)
	if err == nil {
		err = s.Trusts.Delete(r.Context(), t.ID)
	}
	if err != nil {
		s.fail(w, r, err, resTrust)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Trust deleted successfully"})
}
