package dto

import "time"

type PreferenceResponse struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PreferenceUpdateRequest struct {
	Query string `json:"query"`
}
