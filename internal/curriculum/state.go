// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curriculum

import (
	"fmt"
	"strings"

	"github.com/pdiddy/synth-engine/pkg/types"
)

// FatalConfigError reports an invalid SynthesisTask. It is raised only
// during INIT, before any iteration runs, and is the only error that
// crosses the controller boundary besides context cancellation.
type FatalConfigError struct {
	Reason string
}

func (e *FatalConfigError) Error() string {
	return fmt.Sprintf("invalid synthesis task: %s", e.Reason)
}

// runState is the controller's working state for one run. It is owned
// exclusively by the controller for the run's lifetime; no other
// component sees or mutates it.
type runState struct {
	// iteration counts completed iterations. It increases by exactly
	// one per iteration regardless of outcome.
	iteration int

	// difficulty is the current curriculum target. It advances only on
	// acceptance, clamped to the task's maximum, which makes accepted
	// difficulties non-decreasing by construction.
	difficulty float64

	// history holds accepted pairs in acceptance order. Rejected pairs
	// never enter it.
	history []types.AcceptedPair

	// records holds one entry per iteration in execution order.
	records []types.IterationRecord
}

// validateTask checks a SynthesisTask before any iteration runs.
func validateTask(task types.SynthesisTask) *FatalConfigError {
	switch {
	case strings.TrimSpace(task.Source) == "":
		return &FatalConfigError{Reason: "empty source"}
	case !types.ValidCategory(task.Category):
		return &FatalConfigError{Reason: fmt.Sprintf("unknown category %q", task.Category)}
	case task.MaxIterations < 0:
		return &FatalConfigError{Reason: fmt.Sprintf("negative max_iterations %d", task.MaxIterations)}
	case task.InitialDifficulty < types.ScaleMin || task.InitialDifficulty > types.ScaleMax:
		return &FatalConfigError{Reason: fmt.Sprintf("initial difficulty %.1f outside [%.0f, %.0f]", task.InitialDifficulty, types.ScaleMin, types.ScaleMax)}
	case task.MaxDifficulty < types.ScaleMin || task.MaxDifficulty > types.ScaleMax:
		return &FatalConfigError{Reason: fmt.Sprintf("max difficulty %.1f outside [%.0f, %.0f]", task.MaxDifficulty, types.ScaleMin, types.ScaleMax)}
	case task.InitialDifficulty > task.MaxDifficulty:
		return &FatalConfigError{Reason: fmt.Sprintf("initial difficulty %.1f above max %.1f", task.InitialDifficulty, task.MaxDifficulty)}
	case task.DifficultyIncrement < 0:
		return &FatalConfigError{Reason: fmt.Sprintf("negative difficulty increment %.1f", task.DifficultyIncrement)}
	case task.AcceptThreshold < 0:
		return &FatalConfigError{Reason: fmt.Sprintf("negative accept threshold %.1f", task.AcceptThreshold)}
	}
	return nil
}
