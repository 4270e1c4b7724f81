package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synth-engine/internal/curriculum"
	"github.com/pdiddy/synth-engine/internal/dataset"
	"github.com/pdiddy/synth-engine/internal/gateway"
	"github.com/pdiddy/synth-engine/internal/propose"
	"github.com/pdiddy/synth-engine/internal/solve"
	"github.com/pdiddy/synth-engine/internal/validate"
	"github.com/pdiddy/synth-engine/pkg/types"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <source-file>",
	Short: "Synthesize a graded question/answer dataset from one document",
	Long: `Synthesize runs the curriculum loop against a single source document:
each iteration proposes a pair at the current target difficulty, solves
it independently, validates the agreement, and either accepts the pair
(raising the target) or records the rejection in the audit trail.

The run always executes the configured number of iterations; individual
model failures reject single iterations without aborting the run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading source %s: %w", args[0], err)
		}

		task := taskFromFlags(cmd, string(source))
		cfg := loadConfig()

		client, err := newGateway(cfg)
		if err != nil {
			return err
		}
		res, runErr := runSynthesis(cmd.Context(), cfg, client, task)

		// Whatever was accepted before a cancellation is still a
		// dataset; only a fatal configuration leaves nothing to keep.
		// Saving uses a fresh context so a cancelled run still lands.
		if res != nil && res.Status != types.StatusFatal {
			if err := persistRun(context.Background(), cfg, task.Category, res); err != nil {
				return err
			}
		}
		if runErr != nil {
			return runErr
		}

		fmt.Printf("run %s: %s\n", res.RunID, res.Status)
		fmt.Printf("accepted %d/%d pairs (%.0f%%), difficulty %.1f-%.1f\n",
			res.Summary.Accepted, res.Summary.Iterations, res.Summary.AcceptRate*100,
			res.Summary.MinDifficulty, res.Summary.MaxDifficulty)
		return nil
	},
}

// taskFromFlags builds the SynthesisTask from command flags. Validation
// belongs to the controller's INIT step, not here.
func taskFromFlags(cmd *cobra.Command, source string) types.SynthesisTask {
	category, _ := cmd.Flags().GetString("category")
	iterations, _ := cmd.Flags().GetInt("iterations")
	initial, _ := cmd.Flags().GetFloat64("initial-difficulty")
	increment, _ := cmd.Flags().GetFloat64("increment")
	maxDifficulty, _ := cmd.Flags().GetFloat64("max-difficulty")
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	return types.SynthesisTask{
		Source:              source,
		Category:            types.TaskCategory(category),
		MaxIterations:       iterations,
		InitialDifficulty:   initial,
		DifficultyIncrement: increment,
		MaxDifficulty:       maxDifficulty,
		AcceptThreshold:     threshold,
	}
}

// newGateway builds the retrying, rate-limited client for the
// configured provider. Concurrent runs share one client so the
// provider rate limit applies across the whole process.
func newGateway(cfg types.SynthesisConfig) (gateway.Gateway, error) {
	provider, err := gateway.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return gateway.NewClient(provider, cfg.Gateway), nil
}

// runSynthesis wires the roles and controller for one task and runs it
// with progress printed to stderr.
func runSynthesis(ctx context.Context, cfg types.SynthesisConfig, client gateway.Gateway, task types.SynthesisTask) (*types.RunResult, error) {
	proposer := propose.New(client, cfg.Proposer, cfg.Curriculum.ParseRetries)
	solver := solve.New(client, cfg.Solver)
	validator := validate.New(client, cfg.Validator)

	events := make(chan types.ProgressEvent, 64)
	done := make(chan struct{})
	go progressTicker(events, os.Stderr, done)

	c := curriculum.New(task, proposer, solver, validator,
		curriculum.WithEvents(events),
		curriculum.WithIterationBudget(cfg.Curriculum.IterationBudget))

	res, err := c.Run(ctx)
	close(events)
	<-done
	return res, err
}

// persistRun saves a result to the store and exports it to YAML.
func persistRun(ctx context.Context, cfg types.SynthesisConfig, category types.TaskCategory, res *types.RunResult) error {
	store, err := dataset.NewStore(cfg.Dataset)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveRun(ctx, category, res); err != nil {
		return fmt.Errorf("saving run %s: %w", res.RunID, err)
	}
	path, err := store.ExportYAML(category, res)
	if err != nil {
		return fmt.Errorf("exporting run %s: %w", res.RunID, err)
	}
	fmt.Printf("exported %s\n", path)
	return nil
}

func init() {
	synthesizeCmd.Flags().String("category", string(types.CategoryFactual), "task category: factual, reasoning, comprehension, or application")
	synthesizeCmd.Flags().Int("iterations", 10, "number of curriculum iterations to run")
	synthesizeCmd.Flags().Float64("initial-difficulty", 2, "starting difficulty target (1-10)")
	synthesizeCmd.Flags().Float64("increment", 0.5, "difficulty increase per accepted pair")
	synthesizeCmd.Flags().Float64("max-difficulty", 10, "difficulty ceiling (1-10)")
	synthesizeCmd.Flags().Float64("threshold", 7, "minimum validator score for acceptance (1-10)")

	rootCmd.AddCommand(synthesizeCmd)
}
