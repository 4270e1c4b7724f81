// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ProposedPair is one candidate question/answer pair produced by the
// Proposer. It is discarded unless the iteration is accepted.
type ProposedPair struct {
	// Question is the generated question text.
	Question string `json:"question" yaml:"question"`

	// Answer is the Proposer's reference answer, treated as ground truth
	// for validation within this pipeline.
	Answer string `json:"answer" yaml:"answer"`

	// Difficulty is the difficulty the Proposer assigned to its own
	// output. Kept for the audit trail; the controller's target
	// difficulty is authoritative for the curriculum.
	Difficulty float64 `json:"difficulty" yaml:"difficulty"`

	// Justification explains why the pair matches the target difficulty.
	Justification string `json:"justification" yaml:"justification"`
}

// SolverAttempt is the Solver's independent answer to a proposed
// question, produced without sight of the reference answer.
type SolverAttempt struct {
	// Answer is the predicted answer, always coerced to plain text.
	Answer string `json:"answer" yaml:"answer"`

	// Reasoning is an optional trace of how the Solver arrived at the
	// answer. May be empty.
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// ValidationVerdict is the Validator's judgement of agreement between
// the reference answer and the Solver's prediction.
type ValidationVerdict struct {
	// Score measures semantic/factual agreement on the 1-10 scale.
	Score float64 `json:"score" yaml:"score"`

	// Accept is true when Score met the task's acceptance threshold.
	Accept bool `json:"accept" yaml:"accept"`

	// Rationale is the Validator's explanation of the score.
	Rationale string `json:"rationale" yaml:"rationale"`
}

// AcceptedPair is a pair that passed validation, with the curriculum
// position at which it was accepted. Immutable once created.
type AcceptedPair struct {
	// Question and Answer are copied from the accepted proposal.
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`

	// Difficulty is the controller's target difficulty for the iteration
	// that produced the pair. Non-decreasing across a run's history.
	Difficulty float64 `json:"difficulty" yaml:"difficulty"`

	// Score is the validator score that admitted the pair.
	Score float64 `json:"score" yaml:"score"`

	// Iteration is the zero-based index of the producing iteration.
	Iteration int `json:"iteration" yaml:"iteration"`

	// AcceptedAt records when the pair entered the history.
	AcceptedAt time.Time `json:"accepted_at" yaml:"accepted_at"`
}
