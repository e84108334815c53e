package model

import "time"

// PropertyMatch is one scored evaluation of a property against one
// preference version. Rows are append-only: re-evaluation writes a new
// (property, version) row, never edits an existing one.
type PropertyMatch struct {
	PropertyID        string    `json:"property_id"`
	PreferenceVersion int       `json:"preference_version"`
	MatchScore        float64   `json:"match_score"`
	CriteriaMet       []string  `json:"criteria_met"`
	CriteriaMissed    []string  `json:"criteria_missed"`
	Reasoning         string    `json:"reasoning"`
	RunID             string    `json:"run_id"`
	CreatedAt         time.Time `json:"created_at"`
}
