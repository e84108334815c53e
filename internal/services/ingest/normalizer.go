package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
	"github.com/hamiltoon/housing-scout/internal/pkg/validate"
	"github.com/hamiltoon/housing-scout/internal/sources"
)

// ValidationError marks one raw record that could not become a property.
// The record is excluded and counted; the run continues.
type ValidationError struct {
	SourceID string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid listing %s: %s", e.SourceID, e.Reason)
}

// Normalize converts one raw listing into the canonical property shape.
// Pure: same input, same output, no clock reads (timestamps come from the
// raw record).
func Normalize(raw model.RawListing) (model.Property, error) {
	if raw.Source == "" || raw.SourceID == "" {
		return model.Property{}, &ValidationError{SourceID: raw.SourceID, Reason: "missing source identity"}
	}

	var doc sources.RawDocument
	if err := json.Unmarshal(raw.Payload, &doc); err != nil {
		return model.Property{}, &ValidationError{SourceID: raw.SourceID, Reason: "unparseable payload"}
	}

	if doc.ID != raw.SourceID {
		return model.Property{}, &ValidationError{SourceID: raw.SourceID, Reason: "payload id mismatch"}
	}
	if !validate.Required(doc.Address) {
		return model.Property{}, &ValidationError{SourceID: raw.SourceID, Reason: "missing address"}
	}
	if doc.Price <= 0 {
		return model.Property{}, &ValidationError{SourceID: raw.SourceID, Reason: "non-positive price"}
	}

	status := enums.ListingStatus(doc.Status)
	if status == "" {
		status = enums.ListingStatusForSale
	}

	p := model.Property{
		ID:          model.PropertyID(raw.Source, raw.SourceID),
		Source:      raw.Source,
		SourceID:    raw.SourceID,
		Address:     doc.Address,
		Price:       doc.Price,
		Rooms:       doc.Rooms,
		SquareM:     doc.SquareM,
		Description: doc.Description,
		Features:    doc.Features,
		Images:      doc.Images,
		URL:         doc.URL,
		Status:      status,
		ScrapedAt:   raw.FetchedAt,
	}
	p.Location.City = doc.Location.City
	p.Location.Area = doc.Location.Area
	p.Location.Latitude = doc.Location.Latitude
	p.Location.Longitude = doc.Location.Longitude

	return p, nil
}
