// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TaskCategory classifies the kind of question/answer pairs a synthesis
// run produces. The set is closed; Validate rejects anything else.
type TaskCategory string

const (
	CategoryFactual       TaskCategory = "factual"
	CategoryReasoning     TaskCategory = "reasoning"
	CategoryComprehension TaskCategory = "comprehension"
	CategoryApplication   TaskCategory = "application"
)

// validCategories is the set of accepted TaskCategory values.
var validCategories = map[TaskCategory]bool{
	CategoryFactual:       true,
	CategoryReasoning:     true,
	CategoryComprehension: true,
	CategoryApplication:   true,
}

// Difficulty and validator scores share one normalized scale. Thresholds
// use the same scale, so a threshold above ScaleMax can never be met.
const (
	ScaleMin = 1.0
	ScaleMax = 10.0
)

// SynthesisTask describes one synthesis run: the source material, the
// target task category, and the curriculum parameters. A task is built
// once per run and never mutated afterwards.
type SynthesisTask struct {
	// Source is the already-extracted plain text the pairs are drawn from.
	Source string `json:"source" yaml:"source"`

	// Category selects the kind of questions the Proposer generates.
	Category TaskCategory `json:"category" yaml:"category"`

	// MaxIterations bounds the run. Zero is valid and yields an empty
	// dataset without any model calls.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// InitialDifficulty is the target difficulty of the first proposal.
	InitialDifficulty float64 `json:"initial_difficulty" yaml:"initial_difficulty"`

	// DifficultyIncrement is added to the target after each accepted pair.
	DifficultyIncrement float64 `json:"difficulty_increment" yaml:"difficulty_increment"`

	// MaxDifficulty caps the target; the curriculum plateaus there.
	MaxDifficulty float64 `json:"max_difficulty" yaml:"max_difficulty"`

	// AcceptThreshold is the minimum validator score for acceptance.
	AcceptThreshold float64 `json:"accept_threshold" yaml:"accept_threshold"`
}

// ValidCategory reports whether c is one of the closed category set.
func ValidCategory(c TaskCategory) bool {
	return validCategories[c]
}
