package rules

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hamiltoon/housing-scout/internal/domain/model"
)

// Mutable listing fields the diff engine tracks. Everything else on a
// property is treated as fixed once scraped.
const (
	FieldPrice       = "price"
	FieldStatus      = "status"
	FieldFeatures    = "features"
	FieldDescription = "description"
)

// MutableFieldChanges compares the tracked mutable fields of two versions of
// the same property and returns a field-level change list for the audit
// trail. An empty result means the listing is unchanged.
func MutableFieldChanges(prev, cur model.Property) []model.FieldChange {
	var changes []model.FieldChange

	if prev.Price != cur.Price {
		changes = append(changes, model.FieldChange{
			Field: FieldPrice,
			Old:   strconv.FormatInt(prev.Price, 10),
			New:   strconv.FormatInt(cur.Price, 10),
		})
	}
	if prev.Status != cur.Status {
		changes = append(changes, model.FieldChange{
			Field: FieldStatus,
			Old:   string(prev.Status),
			New:   string(cur.Status),
		})
	}
	if prevF, curF := canonicalFeatures(prev.Features), canonicalFeatures(cur.Features); prevF != curF {
		changes = append(changes, model.FieldChange{
			Field: FieldFeatures,
			Old:   prevF,
			New:   curF,
		})
	}
	if prev.Description != cur.Description {
		changes = append(changes, model.FieldChange{
			Field: FieldDescription,
			Old:   prev.Description,
			New:   cur.Description,
		})
	}

	return changes
}

// canonicalFeatures renders a feature list order-insensitively so a source
// reshuffling the same tags does not count as an update.
func canonicalFeatures(features []string) string {
	if len(features) == 0 {
		return ""
	}
	sorted := append([]string(nil), features...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
