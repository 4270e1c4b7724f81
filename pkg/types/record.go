// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Failure cause strings recorded in IterationRecords. Roles report the
// first three; the controller adds the rest.
const (
	CauseGatewayExhausted = "gateway_exhausted"
	CauseProposerParse    = "proposer_parse_failed"
	CauseSolverParse      = "solver_parse_failed"
	CauseLowScore         = "low_score"
	CauseIterationTimeout = "iteration_timeout"
)

// IterationRecord is the full trace of one iteration. One record is
// appended per iteration regardless of outcome; together they form the
// run's audit trail.
type IterationRecord struct {
	// Iteration is the zero-based iteration index.
	Iteration int `json:"iteration" yaml:"iteration"`

	// TargetDifficulty is the curriculum target when the iteration ran.
	TargetDifficulty float64 `json:"target_difficulty" yaml:"target_difficulty"`

	// Proposed holds the Proposer output, if the proposal stage was
	// reached and parsed. Nil when proposing failed.
	Proposed *ProposedPair `json:"proposed,omitempty" yaml:"proposed,omitempty"`

	// Attempt holds the Solver output, if the solve stage completed.
	Attempt *SolverAttempt `json:"attempt,omitempty" yaml:"attempt,omitempty"`

	// Verdict holds the Validator output, if the validate stage completed.
	Verdict *ValidationVerdict `json:"verdict,omitempty" yaml:"verdict,omitempty"`

	// Accepted is true when the pair entered the history.
	Accepted bool `json:"accepted" yaml:"accepted"`

	// Cause names the failure when Accepted is false (one of the Cause*
	// constants). Empty on acceptance.
	Cause string `json:"cause,omitempty" yaml:"cause,omitempty"`

	// CompletedAt records when the iteration finished.
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
}
