// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/synth-engine/pkg/types"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// stubProvider fails the first `failures` calls, then succeeds.
type stubProvider struct {
	failures int
	calls    int
	text     string
}

func (s *stubProvider) Invoke(_ context.Context, _ Request) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", fmt.Errorf("transient error (call %d)", s.calls)
	}
	return s.text, nil
}

func testGatewayConfig(maxRetries int) types.GatewayConfig {
	return types.GatewayConfig{
		Provider:   types.ProviderAnthropic,
		MaxRetries: maxRetries,
		Timeout:    time.Second,
	}
}

func TestClientInvoke_Success(t *testing.T) {
	stub := &stubProvider{text: "hello"}
	c := NewClient(stub, testGatewayConfig(3))

	text, err := c.Invoke(context.Background(), Request{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 1, stub.calls)
}

func TestClientInvoke_RetriesThenSucceeds(t *testing.T) {
	stub := &stubProvider{failures: 2, text: "recovered"}
	c := NewClient(stub, testGatewayConfig(3))

	text, err := c.Invoke(context.Background(), Request{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 3, stub.calls)
}

func TestClientInvoke_Exhaustion(t *testing.T) {
	stub := &stubProvider{failures: 100}
	c := NewClient(stub, testGatewayConfig(2))

	_, err := c.Invoke(context.Background(), Request{User: "hi"})
	require.Error(t, err)

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	// 1 initial + 2 retries = 3 attempts.
	assert.Equal(t, 3, gwErr.Attempts)
	assert.Equal(t, 3, stub.calls)
	assert.ErrorContains(t, gwErr.Err, "transient error")
}

func TestClientInvoke_ContextCancelled(t *testing.T) {
	stub := &stubProvider{failures: 100}
	c := NewClient(stub, testGatewayConfig(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Invoke(ctx, Request{User: "hi"})
	assert.ErrorIs(t, err, context.Canceled)

	var gwErr *Error
	assert.False(t, errors.As(err, &gwErr), "cancellation must not be wrapped as exhaustion")
}

func TestClientInvoke_RateLimited(t *testing.T) {
	stub := &stubProvider{text: "ok"}
	cfg := testGatewayConfig(0)
	cfg.RequestsPerSecond = 100
	c := NewClient(stub, cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Invoke(context.Background(), Request{User: "hi"})
		require.NoError(t, err)
	}
	// Burst 1 at 100 rps: the second and third calls each wait ~10ms.
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	assert.Equal(t, 3, stub.calls)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider types.GatewayProvider
		wantErr  bool
	}{
		{types.ProviderAnthropic, false},
		{types.ProviderOpenAI, false},
		{"mystery", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			cfg := types.SynthesisConfig{Gateway: types.GatewayConfig{Provider: tt.provider, APIKey: "k"}}
			gw, err := NewProvider(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, gw)
		})
	}
}
