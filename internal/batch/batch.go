// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch fans independent synthesis runs out over a directory
// of source documents. Runs share no mutable state, so the only
// coupling between workers is the gateway's provider rate limit.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/synth-engine/pkg/types"
)

// RunFunc executes one synthesis task to completion. The batch driver
// supplies the task with Source filled from a document file.
type RunFunc func(ctx context.Context, name string, task types.SynthesisTask) (*types.RunResult, error)

// Summary holds counts from a batch run.
type Summary struct {
	Synthesized int
	Failed      int
	Skipped     int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Synthesized + s.Failed + s.Skipped
}

// HasFailures reports whether any documents failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// sourceFile reports whether a directory entry is a usable source
// document.
func sourceFile(name string) bool {
	return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".md")
}

// Run synthesizes one dataset per document in dir, with at most
// `workers` runs in flight. A failing document is counted and reported
// on w but never aborts the batch; only cancellation stops it early.
func Run(ctx context.Context, dir string, base types.SynthesisTask, workers int, run RunFunc, w io.Writer) (Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("reading source directory %s: %w", dir, err)
	}

	if workers <= 0 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		summary Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, entry := range entries {
		if entry.IsDir() || !sourceFile(entry.Name()) {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				mu.Lock()
				fmt.Fprintf(w, "failed  %s: %v\n", name, err)
				summary.Failed++
				mu.Unlock()
				return nil
			}
			if strings.TrimSpace(string(data)) == "" {
				mu.Lock()
				fmt.Fprintf(w, "skipped %s: empty\n", name)
				summary.Skipped++
				mu.Unlock()
				return nil
			}

			task := base
			task.Source = string(data)

			res, err := run(gctx, name, task)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", name, err)
				summary.Failed++
				return nil
			}

			fmt.Fprintf(w, "synthesized %s: %d pairs in %d iterations (%s)\n",
				name, res.Summary.Accepted, res.Summary.Iterations, res.Status)
			summary.Synthesized++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "\nsynthesized: %d, skipped: %d, failed: %d\n",
		summary.Synthesized, summary.Skipped, summary.Failed)
	return summary, nil
}
