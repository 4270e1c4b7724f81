// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package curriculum drives the synthesis loop: propose, solve,
// validate, update, repeat. The controller owns all run state, advances
// the difficulty target on acceptance, and absorbs every role-level
// failure so a single bad model call costs one iteration, never the run.
package curriculum

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/synth-engine/internal/propose"
	"github.com/pdiddy/synth-engine/internal/solve"
	"github.com/pdiddy/synth-engine/internal/validate"
	"github.com/pdiddy/synth-engine/pkg/types"
)

// ProposerRole generates a candidate pair at a target difficulty.
// Implemented by *propose.Proposer; tests supply stubs.
type ProposerRole interface {
	Propose(ctx context.Context, source string, category types.TaskCategory, target float64, history []types.AcceptedPair) propose.Result
}

// SolverRole answers a question from the source material alone.
type SolverRole interface {
	Solve(ctx context.Context, source, question string) solve.Result
}

// ValidatorRole scores agreement between reference and prediction.
type ValidatorRole interface {
	Validate(ctx context.Context, question, reference, predicted string, threshold float64) validate.Result
}

// Controller runs the PROPOSE → SOLVE → VALIDATE → UPDATE loop for one
// task. Iterations are strictly sequential: each proposal depends on
// the history produced by all prior accepted iterations, which is the
// mechanism that implements the curriculum.
type Controller struct {
	task      types.SynthesisTask
	proposer  ProposerRole
	solver    SolverRole
	validator ValidatorRole

	runID  string
	budget time.Duration
	events chan<- types.ProgressEvent
	now    func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithEvents attaches a progress-event consumer. Sends never block;
// events are dropped when the channel is full.
func WithEvents(ch chan<- types.ProgressEvent) Option {
	return func(c *Controller) { c.events = ch }
}

// WithIterationBudget enforces a wall-clock budget per iteration.
// Exceeding it rejects the iteration, never the run.
func WithIterationBudget(d time.Duration) Option {
	return func(c *Controller) { c.budget = d }
}

// WithClock overrides the timestamp source. Tests use this for
// deterministic AcceptedAt values.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New wires a Controller. Task validation happens at the start of Run,
// not here, so a Controller is cheap to construct.
func New(task types.SynthesisTask, proposer ProposerRole, solver SolverRole, validator ValidatorRole, opts ...Option) *Controller {
	c := &Controller{
		task:      task,
		proposer:  proposer,
		solver:    solver,
		validator: validator,
		runID:     uuid.NewString()[:12],
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunID identifies this run in persistence and progress events.
func (c *Controller) RunID() string { return c.runID }

// Run executes the state machine to termination.
//
// INIT validates the task; an invalid task returns a *FatalConfigError
// with status FATAL and zero iterations executed. After INIT no failure
// aborts the run: role failures reject single iterations and the loop
// keeps its forward progress. Cancellation is observed at the top of
// each iteration boundary; the partial result is returned together
// with ctx.Err(), with all accepted history intact.
func (c *Controller) Run(ctx context.Context) (*types.RunResult, error) {
	// INIT
	if err := validateTask(c.task); err != nil {
		slog.Error("synthesis task rejected", "run_id", c.runID, "reason", err.Reason)
		res := &types.RunResult{RunID: c.runID, Status: types.StatusFatal}
		c.emit(types.ProgressEvent{RunID: c.runID, Kind: types.EventRunDone, Status: types.StatusFatal})
		return res, err
	}

	st := &runState{difficulty: c.task.InitialDifficulty}

	for st.iteration < c.task.MaxIterations {
		if err := ctx.Err(); err != nil {
			res := c.finish(st)
			return res, err
		}
		c.runIteration(ctx, st)
	}

	res := c.finish(st)
	c.emit(types.ProgressEvent{RunID: c.runID, Kind: types.EventRunDone, Status: res.Status})
	slog.Info("synthesis run complete",
		"run_id", c.runID, "status", res.Status,
		"accepted", res.Summary.Accepted, "iterations", res.Summary.Iterations)
	return res, nil
}

// runIteration executes PROPOSE → SOLVE → VALIDATE → UPDATE once. Any
// role-level failure short-circuits to UPDATE with a recorded cause.
func (c *Controller) runIteration(ctx context.Context, st *runState) {
	iterCtx := ctx
	cancel := context.CancelFunc(func() {})
	if c.budget > 0 {
		iterCtx, cancel = context.WithTimeout(ctx, c.budget)
	}
	defer cancel()

	c.emit(types.ProgressEvent{
		RunID: c.runID, Kind: types.EventIterationStart,
		Iteration: st.iteration, Difficulty: st.difficulty,
	})

	var (
		proposed *types.ProposedPair
		attempt  *types.SolverAttempt
		verdict  *types.ValidationVerdict
		accepted bool
		cause    string
	)

	// PROPOSE
	pres := c.proposer.Propose(iterCtx, c.task.Source, c.task.Category, st.difficulty, st.history)
	if !pres.OK {
		cause = pres.Cause
	} else {
		proposed = &pres.Pair
		c.emit(types.ProgressEvent{
			RunID: c.runID, Kind: types.EventProposed,
			Iteration: st.iteration, Difficulty: st.difficulty,
		})

		// SOLVE
		sres := c.solver.Solve(iterCtx, c.task.Source, proposed.Question)
		if !sres.OK {
			cause = sres.Cause
		} else {
			attempt = &sres.Attempt
			c.emit(types.ProgressEvent{
				RunID: c.runID, Kind: types.EventSolved,
				Iteration: st.iteration, Difficulty: st.difficulty,
			})

			// VALIDATE
			vres := c.validator.Validate(iterCtx, proposed.Question, proposed.Answer, attempt.Answer, c.task.AcceptThreshold)
			if !vres.OK {
				cause = vres.Cause
			} else {
				verdict = &vres.Verdict
				c.emit(types.ProgressEvent{
					RunID: c.runID, Kind: types.EventValidated,
					Iteration: st.iteration, Difficulty: st.difficulty,
				})
				if verdict.Accept {
					accepted = true
				} else {
					cause = types.CauseLowScore
				}
			}
		}
	}

	// A blown iteration budget masks whatever cause the roles reported;
	// the parent context staying live distinguishes it from shutdown.
	if iterCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		accepted = false
		cause = types.CauseIterationTimeout
	}

	// UPDATE: the record is appended unconditionally, the pair only on
	// acceptance, and the iteration counter always advances by one.
	st.records = append(st.records, types.IterationRecord{
		Iteration:        st.iteration,
		TargetDifficulty: st.difficulty,
		Proposed:         proposed,
		Attempt:          attempt,
		Verdict:          verdict,
		Accepted:         accepted,
		Cause:            cause,
		CompletedAt:      c.now(),
	})

	if accepted {
		st.history = append(st.history, types.AcceptedPair{
			Question:   proposed.Question,
			Answer:     proposed.Answer,
			Difficulty: st.difficulty,
			Score:      verdict.Score,
			Iteration:  st.iteration,
			AcceptedAt: c.now(),
		})
		st.difficulty = min(st.difficulty+c.task.DifficultyIncrement, c.task.MaxDifficulty)
	} else {
		slog.Debug("iteration rejected", "run_id", c.runID, "iteration", st.iteration, "cause", cause)
	}

	st.iteration++

	c.emit(types.ProgressEvent{
		RunID: c.runID, Kind: types.EventIterationDone,
		Iteration: st.iteration - 1, Difficulty: st.difficulty,
		Accepted: accepted, Cause: cause,
	})
}

// finish assembles the terminal result from the run state.
func (c *Controller) finish(st *runState) *types.RunResult {
	status := types.StatusCompleted
	if len(st.history) < len(st.records) {
		status = types.StatusCompletedWithErrors
	}
	return &types.RunResult{
		RunID:   c.runID,
		Status:  status,
		Pairs:   st.history,
		Records: st.records,
		Summary: types.Summarize(st.history, st.records),
	}
}

// emit pushes a progress event without blocking. The audit trail is
// the source of truth; a slow consumer loses events, not data.
func (c *Controller) emit(ev types.ProgressEvent) {
	if c.events == nil {
		return
	}
	select {
	case c.events <- ev:
	default:
	}
}
