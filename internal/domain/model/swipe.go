package model

import (
	"time"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
)

// UserSwipe is one user's live decision on one property. At most one row
// exists per (user, property); a later swipe replaces it unless the pair
// already reached the terminal favorited state.
type UserSwipe struct {
	UserID     string              `json:"user_id"`
	PropertyID string              `json:"property_id"`
	Decision   enums.SwipeDecision `json:"decision"`
	DecidedAt  time.Time           `json:"decided_at"`
}
