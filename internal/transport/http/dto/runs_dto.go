package dto

import "github.com/hamiltoon/housing-scout/internal/domain/model"

type RunsResponse struct {
	Runs []model.DailyRun `json:"runs"`
}

type RunDetailResponse struct {
	Run             model.DailyRun       `json:"run"`
	Classifications []ClassificationItem `json:"classifications"`
}

type ClassificationItem struct {
	PropertyID     string              `json:"property_id"`
	Classification string              `json:"classification"`
	Changes        []model.FieldChange `json:"changes,omitempty"`
}
