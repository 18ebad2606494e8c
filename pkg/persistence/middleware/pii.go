package middleware

import (
	"context"
	"errors"

	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// ErrReadOnly is returned by Save on a redacting view.
var ErrReadOnly = errors.New("store is a read-only redacted view")

// PersonalFields are the draft fields that identify people or property.
var PersonalFields = []domain.Field{
	domain.FieldGrantorName,
	domain.FieldGrantorAddress,
	domain.FieldBeneficiaries,
	domain.FieldSuccessorTrustee,
	domain.FieldAssets,
}

type redactingView struct {
	next   ports.WizardStore
	fields []domain.Field
}

// NewRedactingView returns a read-only view whose Load masks the given
// fields. Saving through it would overwrite real answers with masks, so Save
// is refused.
func NewRedactingView(fields []domain.Field) Middleware {
	return func(next ports.WizardStore) ports.WizardStore {
		return &redactingView{next: next, fields: fields}
	}
}

func (m *redactingView) Save(context.Context, string, *domain.WizardState) error {
	return ErrReadOnly
}

func (m *redactingView) Load(ctx context.Context, sessionID string) (*domain.WizardState, error) {
	state, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return Redact(state, m.fields...), nil
}

func (m *redactingView) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactingView) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Redact returns a copy of state with the non-blank values of fields masked,
// including the copy inside the submission acknowledgement.
func Redact(state *domain.WizardState, fields ...domain.Field) *domain.WizardState {
	out := state.Snapshot()
	if out == nil {
		return nil
	}
	out.Draft = maskDraft(out.Draft, fields)
	if out.Submission != nil {
		out.Submission.TrustDraft = maskDraft(out.Submission.TrustDraft, fields)
	}
	return out
}

func maskDraft(d domain.TrustDraft, fields []domain.Field) domain.TrustDraft {
	for _, f := range fields {
		if f == domain.FieldTrustType || !d.Filled(f) {
			continue
		}
		d, _ = d.Set(f, Mask)
	}
	return d
}
