// Package sources defines the listing-source capability and its
// implementations. New property portals add an implementation here; the
// ingestion pipeline never changes.
package sources

import (
	"context"
	"fmt"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

type Source interface {
	Name() enums.Source
	FetchCurrentListings(ctx context.Context) ([]model.RawListing, error)
}

// FetchError marks a whole-source failure (unreachable portal, unparseable
// feed). The daily cycle skips the source's contribution for the run and
// continues with the others.
type FetchError struct {
	Source enums.Source
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch listings from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
