// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/synth-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.DatasetConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *types.RunResult {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	pairs := []types.AcceptedPair{
		{Question: "What city is the capital of France?", Answer: "Paris", Difficulty: 3, Score: 9, Iteration: 0, AcceptedAt: base},
		{Question: "Why is Paris politically significant?", Answer: "It is the seat of government.", Difficulty: 4, Score: 8, Iteration: 2, AcceptedAt: base.Add(time.Minute)},
	}
	records := []types.IterationRecord{
		{
			Iteration: 0, TargetDifficulty: 3, Accepted: true,
			Proposed:    &types.ProposedPair{Question: pairs[0].Question, Answer: pairs[0].Answer, Difficulty: 3},
			Attempt:     &types.SolverAttempt{Answer: "Paris", Reasoning: "stated directly"},
			Verdict:     &types.ValidationVerdict{Score: 9, Accept: true, Rationale: "exact"},
			CompletedAt: base,
		},
		{
			Iteration: 1, TargetDifficulty: 4, Accepted: false, Cause: types.CauseLowScore,
			Verdict:     &types.ValidationVerdict{Score: 2, Accept: false, Rationale: "unrelated"},
			CompletedAt: base.Add(30 * time.Second),
		},
		{
			Iteration: 2, TargetDifficulty: 4, Accepted: true,
			Proposed:    &types.ProposedPair{Question: pairs[1].Question, Answer: pairs[1].Answer, Difficulty: 4.5},
			Verdict:     &types.ValidationVerdict{Score: 8, Accept: true, Rationale: "close"},
			CompletedAt: base.Add(time.Minute),
		},
	}
	return &types.RunResult{
		RunID:   "run-abc123",
		Status:  types.StatusCompletedWithErrors,
		Pairs:   pairs,
		Records: records,
		Summary: types.Summarize(pairs, records),
	}
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	res := sampleResult()

	require.NoError(t, s.SaveRun(ctx, types.CategoryFactual, res))

	pairs, err := s.LoadPairs(ctx, res.RunID)
	require.NoError(t, err)
	require.Len(t, pairs, len(res.Pairs))
	for i, p := range pairs {
		want := res.Pairs[i]
		assert.Equal(t, want.Question, p.Question)
		assert.Equal(t, want.Answer, p.Answer)
		assert.Equal(t, want.Difficulty, p.Difficulty)
		assert.Equal(t, want.Score, p.Score)
		assert.Equal(t, want.Iteration, p.Iteration)
		assert.True(t, want.AcceptedAt.Equal(p.AcceptedAt), "accepted_at drifted: %v vs %v", want.AcceptedAt, p.AcceptedAt)
	}

	records, err := s.LoadRecords(ctx, res.RunID)
	require.NoError(t, err)
	require.Len(t, records, len(res.Records))
	for i, r := range records {
		want := res.Records[i]
		assert.Equal(t, want.Iteration, r.Iteration)
		assert.Equal(t, want.TargetDifficulty, r.TargetDifficulty)
		assert.Equal(t, want.Accepted, r.Accepted)
		assert.Equal(t, want.Cause, r.Cause)
		assert.Equal(t, want.Proposed, r.Proposed)
		assert.Equal(t, want.Attempt, r.Attempt)
		assert.Equal(t, want.Verdict, r.Verdict)
	}
}

func TestStore_SaveRunIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	res := sampleResult()

	require.NoError(t, s.SaveRun(ctx, types.CategoryFactual, res))
	require.NoError(t, s.SaveRun(ctx, types.CategoryFactual, res))

	pairs, err := s.LoadPairs(ctx, res.RunID)
	require.NoError(t, err)
	assert.Len(t, pairs, len(res.Pairs), "re-saving a run must not duplicate pairs")

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_ListRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	res := sampleResult()
	require.NoError(t, s.SaveRun(ctx, types.CategoryReasoning, res))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)
	assert.Equal(t, types.StatusCompletedWithErrors, runs[0].Status)
	assert.Equal(t, types.CategoryReasoning, runs[0].Category)
	assert.Equal(t, 2, runs[0].Accepted)
}

func TestStore_LoadUnknownRun(t *testing.T) {
	s := testStore(t)

	pairs, err := s.LoadPairs(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestExportYAML_RoundTrip(t *testing.T) {
	s := testStore(t)
	res := sampleResult()

	path, err := s.ExportYAML(types.CategoryFactual, res)
	require.NoError(t, err)

	ef, err := ReadExport(path)
	require.NoError(t, err)

	assert.Equal(t, res.RunID, ef.RunID)
	assert.Equal(t, res.Status, ef.Status)
	assert.Equal(t, types.CategoryFactual, ef.Category)
	require.Len(t, ef.Pairs, len(res.Pairs))
	for i, p := range ef.Pairs {
		want := res.Pairs[i]
		assert.Equal(t, want.Question, p.Question)
		assert.Equal(t, want.Answer, p.Answer)
		assert.Equal(t, want.Difficulty, p.Difficulty)
		assert.Equal(t, want.Score, p.Score)
	}
}
