// Package snapshot compares today's normalized listing set against the
// prior stored snapshot and classifies every listing for the daily run.
package snapshot

import (
	"github.com/hamiltoon/housing-scout/internal/domain/model"
	"github.com/hamiltoon/housing-scout/internal/domain/rules"
)

// Classification labels recorded on the per-run audit trail.
const (
	ClassificationNew       = "new"
	ClassificationUpdated   = "updated"
	ClassificationUnchanged = "unchanged"
	ClassificationRemoved   = "removed"
)

// Result partitions today's listings by property id. Every id in current
// lands in exactly one of New/Updated/Unchanged; ids only in previous land
// in Removed. Changes carries the field-level audit list for each updated
// property.
type Result struct {
	New       []model.Property
	Updated   []model.Property
	Unchanged []model.Property
	Removed   []model.Property
	Changes   map[string][]model.FieldChange
}

// Diff is pure and deterministic: no clock, no store, no hidden state.
// Running it twice on the same inputs yields identical partitions.
func Diff(previous, current []model.Property) Result {
	result := Result{
		Changes: map[string][]model.FieldChange{},
	}

	prevByID := make(map[string]model.Property, len(previous))
	for _, p := range previous {
		prevByID[p.ID] = p
	}

	currentIDs := make(map[string]bool, len(current))
	for _, cur := range current {
		currentIDs[cur.ID] = true

		prev, existed := prevByID[cur.ID]
		if !existed {
			result.New = append(result.New, cur)
			continue
		}

		changes := rules.MutableFieldChanges(prev, cur)
		if len(changes) == 0 {
			result.Unchanged = append(result.Unchanged, cur)
			continue
		}

		result.Updated = append(result.Updated, cur)
		result.Changes[cur.ID] = changes
	}

	for _, prev := range previous {
		if !currentIDs[prev.ID] {
			result.Removed = append(result.Removed, prev)
		}
	}

	return result
}

// NewIDs lists the ids first seen this run, recorded on the ledger entry.
func (r Result) NewIDs() []string {
	ids := make([]string, 0, len(r.New))
	for _, p := range r.New {
		ids = append(ids, p.ID)
	}
	return ids
}

// Evaluable returns the subset the match orchestrator must score: new and
// updated listings. Unchanged listings reuse their existing match record;
// removed listings keep their history but are never re-scored.
func (r Result) Evaluable() []model.Property {
	listings := make([]model.Property, 0, len(r.New)+len(r.Updated))
	listings = append(listings, r.New...)
	listings = append(listings, r.Updated...)
	return listings
}
