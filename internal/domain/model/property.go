package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
)

// RawListing is one listing record exactly as a source produced it. The
// payload is archived before normalization and never discarded, so old runs
// can be reprocessed later.
type RawListing struct {
	Source    enums.Source    `json:"source"`
	SourceID  string          `json:"source_id"`
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

type Location struct {
	City      string   `json:"city"`
	Area      string   `json:"area,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Property struct {
	ID          string              `json:"id"`
	Source      enums.Source        `json:"source"`
	SourceID    string              `json:"source_id"`
	Address     string              `json:"address"`
	Location    Location            `json:"location"`
	Price       int64               `json:"price"`
	Rooms       float64             `json:"rooms"`
	SquareM     int                 `json:"sqm"`
	Description string              `json:"description"`
	Features    []string            `json:"features"`
	Images      []string            `json:"images"`
	URL         string              `json:"url"`
	Status      enums.ListingStatus `json:"status"`
	RawKey      string              `json:"raw_key"`
	ScrapedAt   time.Time           `json:"scraped_at"`
	FirstSeenAt time.Time           `json:"first_seen_at"`
	LastSeenAt  time.Time           `json:"last_seen_at"`
	RemovedAt   *time.Time          `json:"removed_at,omitempty"`

	// Reserved for the semantic-search extension. Always nil in this core;
	// absence is a valid state, not an error.
	Embedding []float32 `json:"embedding,omitempty"`
}

// PropertyID builds the stable identity key from the (source, source id)
// pair. All persistence is addressed by this key.
func PropertyID(source enums.Source, sourceID string) string {
	return fmt.Sprintf("%s:%s", source, sourceID)
}

type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}
