package model

import (
	"time"
)

// RunStatus represents the current state of a scan run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusEmpty    RunStatus = "empty"
	RunStatusFailed   RunStatus = "failed"
)

// Terminal reports whether the run has finished, successfully or not.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusComplete, RunStatusEmpty, RunStatusFailed:
		return true
	default:
		return false
	}
}

// ScanQuery describes one invocation of the scraping actor.
type ScanQuery struct {
	SearchTerm string `json:"search_term"`
	Location   string `json:"location"`
	PageLimit  int    `json:"page_limit"`
	Zoom       int    `json:"zoom"`
}

// SearchString returns the free-text query sent to the actor.
func (q ScanQuery) SearchString() string {
	return q.SearchTerm + " in " + q.Location
}

// Run represents a single scan: the query, its status and the resulting
// target list.
type Run struct {
	ID        string      `json:"id"`
	Query     ScanQuery   `json:"query"`
	Status    RunStatus   `json:"status"`
	Result    *TargetList `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
