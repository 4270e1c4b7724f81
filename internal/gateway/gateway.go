// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway wraps single calls to a generative model behind a
// capability interface. Providers are selected once at construction;
// retries, timeouts, and rate limiting live in the Client wrapper so
// provider implementations stay single-shot.
package gateway

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/synth-engine/pkg/types"
)

// MediaRef is an inline media reference attached to a request.
type MediaRef struct {
	// URL locates the media (https or data URL).
	URL string `json:"url" yaml:"url"`

	// MIMEType is the media type (e.g. "image/png").
	MIMEType string `json:"mime_type" yaml:"mime_type"`
}

// Request is one generative-model call. Model, Temperature, and
// MaxTokens come from the calling role's RoleConfig and are passed
// through opaquely.
type Request struct {
	System      string
	User        string
	Media       []MediaRef
	Model       string
	Temperature float32
	MaxTokens   int
}

// Gateway is the boundary abstraction over one generative-model call.
// Implementations perform exactly one outbound call per Invoke; the
// Client wrapper adds retries on top.
type Gateway interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// Error is returned after retry exhaustion. It wraps the last
// underlying transport error.
type Error struct {
	// Attempts is the total number of calls made.
	Attempts int

	// Err is the last underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: exhausted %d attempts: %v", e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// backoffBase controls the base duration for exponential backoff
// between retries. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// Client wraps a provider with bounded retry, per-call timeouts, and
// provider-level rate limiting. Safe for concurrent use by independent
// runs.
type Client struct {
	provider   Gateway
	maxRetries int
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewClient builds a Client around provider using cfg's retry, timeout,
// and rate-limit settings.
func NewClient(provider Gateway, cfg types.GatewayConfig) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		provider:   provider,
		maxRetries: maxRetries,
		timeout:    timeout,
		limiter:    limiter,
	}
}

// NewProvider constructs the configured provider backend.
func NewProvider(cfg types.SynthesisConfig) (Gateway, error) {
	switch cfg.Gateway.Provider {
	case types.ProviderAnthropic:
		return NewAnthropic(cfg.Gateway.APIKey), nil
	case types.ProviderOpenAI:
		return NewOpenAI(cfg.Gateway.APIKey), nil
	default:
		return nil, fmt.Errorf("gateway: unknown provider %q", cfg.Gateway.Provider)
	}
}

// Invoke performs the call with bounded exponential-backoff retry.
// Each attempt carries its own timeout. After exhaustion it returns a
// *Error wrapping the last cause; a context cancellation is returned
// as-is so callers can distinguish shutdown from provider failure.
func (c *Client) Invoke(ctx context.Context, req Request) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		text, err := c.invokeOnce(ctx, req)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}

	return "", &Error{Attempts: c.maxRetries + 1, Err: lastErr}
}

func (c *Client) invokeOnce(ctx context.Context, req Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.provider.Invoke(callCtx, req)
}
