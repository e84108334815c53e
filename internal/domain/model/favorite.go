package model

import (
	"time"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
)

// FavoriteProperty is created exactly once, the instant both users' live
// decisions are yes. AddedAt is fixed at creation; notes and status stay
// editable.
type FavoriteProperty struct {
	PropertyID string               `json:"property_id"`
	Notes      string               `json:"notes"`
	Status     enums.FavoriteStatus `json:"status"`
	AddedAt    time.Time            `json:"added_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}
