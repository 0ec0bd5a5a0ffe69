// Package store persists scan runs and their target lists.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/model"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = eris.New("store: run not found")

// defaultListLimit caps ListRuns when no limit is given.
const defaultListLimit = 100

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	Location string          `json:"location,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// Store defines persistence for scan runs.
type Store interface {
	CreateRun(ctx context.Context, query model.ScanQuery) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	// CompleteRun stores the target list and marks the run complete, or
	// empty when the list has no leads.
	CompleteRun(ctx context.Context, runID string, result *model.TargetList) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// completedStatus picks the terminal status for a finished scan.
func completedStatus(result *model.TargetList) model.RunStatus {
	if result.Len() == 0 {
		return model.RunStatusEmpty
	}
	return model.RunStatusComplete
}
