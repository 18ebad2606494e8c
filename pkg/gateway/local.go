// Package gateway implements the submission gateway on top of a trust repository.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/livingtrust/livingtrust/internal/logging"
	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
)

// Local creates trusts directly in a TrustRepository.
// Requests from one owner sharing an idempotency key produce a single trust.
type Local struct {
	repo   ports.TrustRepository
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures Local.
type Option func(*Local)

func WithClock(now func() time.Time) Option {
	return func(l *Local) { l.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(l *Local) { l.newID = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Local) { l.logger = logger }
}

// NewLocal returns a gateway writing to repo.
func NewLocal(repo ports.TrustRepository, opts ...Option) *Local {
	l := &Local{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.SubmissionGateway = (*Local)(nil)

// Submit creates a trust with status draft. A key repeated by the same
// owner returns the trust created by the first request. Keys of other owners
// never match.
func (l *Local) Submit(ctx context.Context, req ports.GatewayRequest) (*domain.Trust, error) {
	if req.IdempotencyKey != "" {
		existing, err := l.repo.FindByIdempotencyKey(ctx, req.OwnerID, req.IdempotencyKey)
		if err == nil {
			l.logger.Info("duplicate submission ignored", "idempotency_key", req.IdempotencyKey, "trust_id", existing.ID)
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	now := l.now()
	t := &domain.Trust{
		ID:             l.newID(),
		TrustDraft:     req.Draft,
		Status:         domain.TrustStatusDraft,
		OwnerID:        req.OwnerID,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t.TrustType == "" {
		t.TrustType = domain.TrustRevocable
	}
	if err := l.repo.Create(ctx, t); err != nil {
		// Lost a race with a concurrent request under the same key.
		if errors.Is(err, domain.ErrAlreadyExists) && req.IdempotencyKey != "" {
			if existing, ferr := l.repo.FindByIdempotencyKey(ctx, req.OwnerID, req.IdempotencyKey); ferr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("create trust: %w", err)
	}
	l.logger.Info("trust created", "trust_id", t.ID, "owner_id", t.OwnerID)
	return t, nil
}
