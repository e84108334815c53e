package dto

type SwipeRequest struct {
	UserID     string `json:"user_id"`
	PropertyID string `json:"property_id"`
	Decision   string `json:"decision"`
}

type SwipeResponse struct {
	OK              bool    `json:"ok"`
	PairState       string  `json:"pair_state"`
	FavoriteCreated bool    `json:"favorite_created"`
	DecisionA       *string `json:"decision_a,omitempty"`
	DecisionB       *string `json:"decision_b,omitempty"`
}
