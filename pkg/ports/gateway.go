package ports

import (
	"context"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

// GatewayRequest is the payload of a single trust submission.
type GatewayRequest struct {
	Draft domain.TrustDraft
	// IdempotencyKey deduplicates retries. The wizard passes its session ID.
	IdempotencyKey string
	// OwnerID is the authenticated user, if any.
	OwnerID string
}

// SubmissionGateway creates a trust from a confirmed draft.
// Implementations are called exactly once per confirmation.
type SubmissionGateway interface {
	Submit(ctx context.Context, req GatewayRequest) (*domain.Trust, error)
}

// SubmissionGatewayFunc adapts a function to SubmissionGateway.
type SubmissionGatewayFunc func(ctx context.Context, req GatewayRequest) (*domain.Trust, error)

func (f SubmissionGatewayFunc) Submit(ctx context.Context, req GatewayRequest) (*domain.Trust, error) {
	return f(ctx, req)
}

// ChatRequest is a question sent to the advisor.
type ChatRequest struct {
	Message string `json:"message"`
	// Context is optional background, e.g. the draft being edited.
	Context string `json:"context,omitempty"`
}

// Advisor answers questions about living trusts and reviews trust documents.
type Advisor interface {
	Chat(ctx context.Context, req ChatRequest) (*domain.ChatReply, error)
	Analyze(ctx context.Context, documentText string) (*domain.Analysis, error)
}
