package model

import "time"

// SharedPreference is the single natural-language criteria text both users
// share. Exactly one live record exists; every text change bumps Version so
// match records can pin the exact version they were scored against.
type SharedPreference struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Reserved for semantic search, not populated yet.
	Embedding []float32 `json:"embedding,omitempty"`
}
