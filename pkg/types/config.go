// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// GatewayProvider identifies the generative-model backend.
type GatewayProvider string

const (
	ProviderAnthropic GatewayProvider = "anthropic"
	ProviderOpenAI    GatewayProvider = "openai"
)

// RoleConfig holds the per-role model settings passed through opaquely
// to the gateway. Each role (proposer, solver, validator) carries its own.
type RoleConfig struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// Temperature is the sampling temperature for this role.
	Temperature float32 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the response length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// GatewayConfig holds settings shared by all gateway providers.
type GatewayConfig struct {
	// Provider selects the backend: anthropic or openai.
	Provider GatewayProvider `json:"provider" yaml:"provider"`

	// APIKey authenticates against the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout is the per-call timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retry attempts for transport failures
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestsPerSecond rate-limits calls to the backing provider across
	// all concurrent runs. Zero disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// CurriculumConfig holds run-level knobs that are not part of the task
// itself.
type CurriculumConfig struct {
	// IterationBudget is an optional wall-clock budget per iteration.
	// Exceeding it rejects the iteration; zero disables the budget.
	IterationBudget time.Duration `json:"iteration_budget" yaml:"iteration_budget"`

	// ParseRetries is the number of regeneration attempts the Proposer
	// makes on malformed output before giving up (default 2).
	ParseRetries int `json:"parse_retries" yaml:"parse_retries"`
}

// DatasetConfig holds persistence settings.
type DatasetConfig struct {
	// Dir is the base directory for dataset output (contains index/ and
	// exported/).
	Dir string `json:"dir" yaml:"dir"`
}

// SynthesisConfig groups all configuration for the synthesis engine.
type SynthesisConfig struct {
	Gateway    GatewayConfig    `json:"gateway" yaml:"gateway"`
	Proposer   RoleConfig       `json:"proposer" yaml:"proposer"`
	Solver     RoleConfig       `json:"solver" yaml:"solver"`
	Validator  RoleConfig       `json:"validator" yaml:"validator"`
	Curriculum CurriculumConfig `json:"curriculum" yaml:"curriculum"`
	Dataset    DatasetConfig    `json:"dataset" yaml:"dataset"`
}
