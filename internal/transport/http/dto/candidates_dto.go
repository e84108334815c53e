package dto

import "github.com/hamiltoon/housing-scout/internal/domain/model"

type CandidatesResponse struct {
	PreferenceVersion int             `json:"preference_version"`
	Candidates        []CandidateItem `json:"candidates"`
}

type CandidateItem struct {
	Property       model.Property      `json:"property"`
	Match          model.PropertyMatch `json:"match"`
	PairState      string              `json:"pair_state"`
	DecisionA      *string             `json:"decision_a,omitempty"`
	DecisionB      *string             `json:"decision_b,omitempty"`
	Favorited      bool                `json:"favorited"`
	FavoriteStatus *string             `json:"favorite_status,omitempty"`
}
