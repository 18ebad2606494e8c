package loam

import "time"

// DocumentMetadata is the YAML frontmatter of a stored document.
// The markdown body holds the document content.
type DocumentMetadata struct {
	ID         string    `json:"id" mapstructure:"id"`
	Name       string    `json:"name" mapstructure:"name"`
	Type       string    `json:"type" mapstructure:"type"`
	URL        string    `json:"url,omitempty" mapstructure:"url"`
	Size       int64     `json:"size" mapstructure:"size"`
	OwnerID    string    `json:"owner_id,omitempty" mapstructure:"owner_id"`
	UploadedAt time.Time `json:"uploaded_at" mapstructure:"uploaded_at"`

	// Deleted marks a tombstone. Tombstoned documents are invisible to Get and List.
	Deleted bool `json:"deleted,omitempty" mapstructure:"deleted"`
}
