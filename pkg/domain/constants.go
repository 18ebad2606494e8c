package domain

// Header and field constants shared by adapters.
const (
	// HeaderIdempotencyKey carries the key that deduplicates trust submissions.
	// The wizard uses its session ID as the key.
	HeaderIdempotencyKey = "Idempotency-Key"

	// NotSet is rendered in summaries for blank draft fields.
	NotSet = "Not set"
)
