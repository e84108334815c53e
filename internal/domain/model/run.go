package model

import (
	"time"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
)

// RunCounts summarizes one ingestion cycle's outcome.
type RunCounts struct {
	Scraped       int `json:"scraped"`
	Invalid       int `json:"invalid"`
	New           int `json:"new"`
	Updated       int `json:"updated"`
	Removed       int `json:"removed"`
	Unchanged     int `json:"unchanged"`
	Matched       int `json:"matched"`
	FailedBatches int `json:"failed_batches"`
	SourceErrors  int `json:"source_errors"`
}

// DailyRun is the immutable ledger record of one full ingest, diff and match
// cycle. A run with zero changes is still recorded: it distinguishes
// "nothing changed" from "never ran".
type DailyRun struct {
	ID             string          `json:"id"`
	RunDate        string          `json:"run_date"`
	Status         enums.RunStatus `json:"status"`
	Counts         RunCounts       `json:"counts"`
	NewPropertyIDs []string        `json:"new_property_ids"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
}
