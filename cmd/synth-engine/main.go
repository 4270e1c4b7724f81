// Package main is the entry point for the synth-engine CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/synth-engine/internal/secrets"
	"github.com/pdiddy/synth-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the synth-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "synth-engine",
	Short: "Curriculum-driven training-data synthesis from source documents",
	Long: `synth-engine turns source documents into graded question/answer
datasets. Three model roles cooperate per iteration: a proposer writes a
candidate pair at a target difficulty, a solver answers the question from
the source alone, and a validator scores their agreement. Accepted pairs
raise the difficulty target, so each run climbs a curriculum.

Datasets and full per-iteration audit trails are stored in SQLite and can
be exported to YAML for downstream training pipelines.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./synth-engine.yaml or ~/.config/synth-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("synth-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "synth-engine"))
		}
	}

	viper.SetEnvPrefix("SYNTH_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("gateway.provider", string(types.ProviderAnthropic))
	viper.SetDefault("gateway.timeout", "60s")
	viper.SetDefault("gateway.max_retries", 3)
	viper.SetDefault("curriculum.parse_retries", 2)
	viper.SetDefault("dataset.dir", "datasets")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// roleConfig reads one role's model settings from viper.
func roleConfig(role string) types.RoleConfig {
	cfg := types.RoleConfig{
		Model:       viper.GetString(role + ".model"),
		Temperature: float32(viper.GetFloat64(role + ".temperature")),
		MaxTokens:   viper.GetInt(role + ".max_tokens"),
	}
	if cfg.Model == "" {
		cfg.Model = viper.GetString("model")
	}
	return cfg
}

// loadConfig assembles the full synthesis configuration from viper and
// loaded secrets.
func loadConfig() types.SynthesisConfig {
	provider := types.GatewayProvider(viper.GetString("gateway.provider"))

	secretKey := "anthropic-api-key"
	if provider == types.ProviderOpenAI {
		secretKey = "openai-api-key"
	}

	return types.SynthesisConfig{
		Gateway: types.GatewayConfig{
			Provider:          provider,
			APIKey:            secretDefault(secretKey, viper.GetString("gateway.api_key")),
			Timeout:           viper.GetDuration("gateway.timeout"),
			MaxRetries:        viper.GetInt("gateway.max_retries"),
			RequestsPerSecond: viper.GetFloat64("gateway.requests_per_second"),
		},
		Proposer:  roleConfig("proposer"),
		Solver:    roleConfig("solver"),
		Validator: roleConfig("validator"),
		Curriculum: types.CurriculumConfig{
			IterationBudget: viper.GetDuration("curriculum.iteration_budget"),
			ParseRetries:    viper.GetInt("curriculum.parse_retries"),
		},
		Dataset: types.DatasetConfig{
			Dir: viper.GetString("dataset.dir"),
		},
	}
}

// progressTicker drains run events onto w until the channel closes.
func progressTicker(events <-chan types.ProgressEvent, w *os.File, done chan<- struct{}) {
	for ev := range events {
		switch ev.Kind {
		case types.EventIterationDone:
			outcome := "accepted"
			if !ev.Accepted {
				outcome = "rejected (" + ev.Cause + ")"
			}
			fmt.Fprintf(w, "[%s] iteration %d: %s, next difficulty %.1f\n",
				time.Now().Format("15:04:05"), ev.Iteration, outcome, ev.Difficulty)
		case types.EventRunDone:
			fmt.Fprintf(w, "[%s] run %s finished: %s\n",
				time.Now().Format("15:04:05"), ev.RunID, ev.Status)
		}
	}
	close(done)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
