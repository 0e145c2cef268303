package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary records what one pipeline run did. It is logged at the end of a
// run and handed to publishers.
type RunSummary struct {
	ID         string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Source   string `json:"source"`
	Artifact string `json:"artifact"`
	Locality string `json:"locality"`

	RowsRead          int `json:"rows_read"`
	DroppedDate       int `json:"dropped_date"`
	DroppedLocality   int `json:"dropped_locality"`
	DroppedCoordinate int `json:"dropped_coordinate"`
	DroppedGeofence   int `json:"dropped_geofence"`
	Imputed           int `json:"imputed"`
	RowsWritten       int `json:"rows_written"`
	Approved          int `json:"approved"`
	Rejected          int `json:"rejected"`

	Violations map[Parameter]int `json:"violations"`
}

// StartRun opens a summary with a fresh ID and the current clock time.
func StartRun(source, artifact, locality string) RunSummary {
	return RunSummary{
		ID:        uuid.NewString(),
		StartedAt: clock.Now().UTC(),
		Source:    source,
		Artifact:  artifact,
		Locality:  locality,
	}
}

// Finish stamps the end time and tallies the classified records.
func (s RunSummary) Finish(records []Record) RunSummary {
	s.FinishedAt = clock.Now().UTC()
	s.RowsWritten = len(records)
	s.Approved, s.Rejected = 0, 0
	for _, r := range records {
		if r.Outcome.Verdict == VerdictApproved {
			s.Approved++
		} else {
			s.Rejected++
		}
	}
	s.Violations = Violations(records)
	return s
}

// Duration is the wall time between start and finish.
func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
