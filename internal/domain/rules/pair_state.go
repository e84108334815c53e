package rules

import "github.com/hamiltoon/housing-scout/internal/domain/enums"

// PairStateFor derives the pair-level state for a property from the two
// users' current live decisions. Nil means the user has not decided yet.
// The state is always recomputed from the decisions, never stored on its
// own, so it cannot drift.
func PairStateFor(first, second *enums.SwipeDecision) enums.PairState {
	if first == nil || second == nil {
		return enums.PairStatePending
	}
	if *first == enums.SwipeDecisionYes && *second == enums.SwipeDecisionYes {
		return enums.PairStateFavorited
	}
	return enums.PairStateDisagreement
}
