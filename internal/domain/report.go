package domain

import "time"

// UnitStatus tracks one source×category extraction unit.
type UnitStatus string

const (
	UnitComplete UnitStatus = "complete"
	UnitPartial  UnitStatus = "partial"
	UnitFailed   UnitStatus = "failed"
	UnitDegraded UnitStatus = "degraded"
)

// RunStatus summarizes the whole pipeline run.
type RunStatus string

const (
	RunComplete          RunStatus = "complete"
	RunCompleteWithFails RunStatus = "complete-with-partial-failures"
	RunFailed            RunStatus = "failed"
)

// UnitKey addresses one extraction unit inside a report.
type UnitKey struct {
	Source   string
	Category string
}

// UnitOutcome is the per-unit entry of a PipelineReport.
type UnitOutcome struct {
	Status  UnitStatus
	Retries int
}

// PipelineReport accompanies a FinalSelection back to the caller. Units hold
// per-source×category extraction outcomes; Categories hold the final-selection
// status per category (complete, or degraded after a parse fallback).
type PipelineReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Units      map[UnitKey]UnitOutcome
	Categories map[string]UnitStatus
	Overall    RunStatus
}

// Degraded returns true when any unit or category ended below complete.
func (r PipelineReport) Degraded() bool {
	for _, outcome := range r.Units {
		if outcome.Status != UnitComplete {
			return true
		}
	}
	for _, status := range r.Categories {
		if status != UnitComplete {
			return true
		}
	}
	return false
}
