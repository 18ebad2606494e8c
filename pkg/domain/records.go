package domain

import "time"

// TrustStatus is the lifecycle status of a stored trust.
type TrustStatus string

const (
	TrustStatusDraft  TrustStatus = "draft"
	TrustStatusReview TrustStatus = "review"
	TrustStatusFinal  TrustStatus = "final"
)

// Valid reports whether s is a known status.
func (s TrustStatus) Valid() bool {
	switch s {
	case TrustStatusDraft, TrustStatusReview, TrustStatusFinal:
		return true
	}
	return false
}

// Trust is a trust record created by the submission gateway.
// The draft fields are inlined in its JSON form.
type Trust struct {
	ID string `json:"id"`
	TrustDraft
	Status         TrustStatus `json:"status"`
	OwnerID        string      `json:"ownerId,omitempty"`
	IdempotencyKey string      `json:"-"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// TrustFilter narrows a trust listing. Zero values match everything.
type TrustFilter struct {
	OwnerID string
	Status  TrustStatus
}

// Match reports whether t passes the filter.
func (f TrustFilter) Match(t *Trust) bool {
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// Document is an uploaded or linked document. Its content is opaque.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type,omitempty"`
	URL        string    `json:"url,omitempty"`
	Content    string    `json:"content,omitempty"`
	Size       int64     `json:"size,omitempty"`
	OwnerID    string    `json:"ownerId,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// User is an account. PasswordHash never leaves the backend.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the projection of a User returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public returns the client-facing projection.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Severity grades a document analysis issue.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue is a single finding of a document analysis.
type Issue struct {
	Severity   Severity `json:"severity"`
	Text       string   `json:"text"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Analysis is the structured review of a trust document.
type Analysis struct {
	Score           int      `json:"score"`
	Issues          []Issue  `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Summary         string   `json:"summary"`
}

// ChatReply is the advisory answer to a question.
type ChatReply struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}
