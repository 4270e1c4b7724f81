// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RunStatus is the terminal status of a synthesis run.
type RunStatus string

const (
	// StatusCompleted means the run reached max_iterations with every
	// iteration accepted (or max_iterations was zero).
	StatusCompleted RunStatus = "COMPLETED"

	// StatusCompletedWithErrors means the run reached max_iterations but
	// at least one iteration was rejected.
	StatusCompletedWithErrors RunStatus = "COMPLETED_WITH_ERRORS"

	// StatusFatal means the run aborted during initialization due to an
	// invalid task. No iterations executed.
	StatusFatal RunStatus = "FATAL"
)

// RunSummary aggregates statistics over a completed run.
type RunSummary struct {
	// Iterations is the number of iterations that executed.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Accepted is the number of pairs that entered the history.
	Accepted int `json:"accepted" yaml:"accepted"`

	// AcceptRate is Accepted / Iterations, or 0 for an empty run.
	AcceptRate float64 `json:"accept_rate" yaml:"accept_rate"`

	// MinDifficulty and MaxDifficulty bound the accepted pairs'
	// difficulties. Both zero when nothing was accepted.
	MinDifficulty float64 `json:"min_difficulty" yaml:"min_difficulty"`
	MaxDifficulty float64 `json:"max_difficulty" yaml:"max_difficulty"`
}

// RunResult is everything a synthesis run produces: the dataset, the
// audit trail, and summary statistics.
type RunResult struct {
	// RunID identifies the run across persistence and progress events.
	RunID string `json:"run_id" yaml:"run_id"`

	// Status is the terminal status code.
	Status RunStatus `json:"status" yaml:"status"`

	// Pairs is the synthesized dataset in acceptance order.
	Pairs []AcceptedPair `json:"pairs" yaml:"pairs"`

	// Records is the full per-iteration audit trail in execution order.
	Records []IterationRecord `json:"records" yaml:"records"`

	// Summary holds aggregate statistics.
	Summary RunSummary `json:"summary" yaml:"summary"`
}

// Summarize computes a RunSummary from pairs and records.
func Summarize(pairs []AcceptedPair, records []IterationRecord) RunSummary {
	s := RunSummary{
		Iterations: len(records),
		Accepted:   len(pairs),
	}
	if s.Iterations > 0 {
		s.AcceptRate = float64(s.Accepted) / float64(s.Iterations)
	}
	for i, p := range pairs {
		if i == 0 || p.Difficulty < s.MinDifficulty {
			s.MinDifficulty = p.Difficulty
		}
		if p.Difficulty > s.MaxDifficulty {
			s.MaxDifficulty = p.Difficulty
		}
	}
	return s
}
