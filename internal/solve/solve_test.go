// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/synth-engine/internal/gateway"
	"github.com/pdiddy/synth-engine/pkg/types"
)

// fixedGateway replays one canned response and records the request.
type fixedGateway struct {
	response string
	err      error
	lastReq  gateway.Request
	calls    int
}

func (f *fixedGateway) Invoke(_ context.Context, req gateway.Request) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testRole() types.RoleConfig {
	return types.RoleConfig{Model: "test-model", Temperature: 0.2, MaxTokens: 1024}
}

func TestSolve_Success(t *testing.T) {
	gw := &fixedGateway{response: `{"reasoning": "stated in the first sentence", "final_answer": "Paris"}`}
	s := New(gw, testRole())

	res := s.Solve(context.Background(), "Paris is the capital of France.", "What is the capital of France?")
	if !res.OK {
		t.Fatalf("Solve failed: cause=%q raw=%q", res.Cause, res.Raw)
	}
	if res.Attempt.Answer != "Paris" {
		t.Errorf("answer = %q, want Paris", res.Attempt.Answer)
	}
	if res.Attempt.Reasoning == "" {
		t.Error("reasoning trace was dropped")
	}

	if !strings.Contains(gw.lastReq.User, "What is the capital of France?") {
		t.Error("prompt missing the question")
	}
	if !strings.Contains(gw.lastReq.User, "Paris is the capital of France.") {
		t.Error("prompt missing the source")
	}
}

func TestSolve_CoercesNonStringAnswers(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want string
	}{
		{"number", `{"final_answer": 42}`, "42"},
		{"float", `{"final_answer": 3.5}`, "3.5"},
		{"bool", `{"final_answer": false}`, "false"},
		{"object", `{"final_answer": {"city": "Paris"}}`, `{"city": "Paris"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fixedGateway{response: tt.resp}
			s := New(gw, testRole())

			res := s.Solve(context.Background(), "src", "q?")
			if !res.OK {
				t.Fatalf("Solve failed: %q", res.Cause)
			}
			if res.Attempt.Answer != tt.want {
				t.Errorf("answer = %q, want %q", res.Attempt.Answer, tt.want)
			}
		})
	}
}

func TestSolve_ParseFailureIsSentinel(t *testing.T) {
	gw := &fixedGateway{response: "I refuse to answer in JSON."}
	s := New(gw, testRole())

	res := s.Solve(context.Background(), "src", "q?")
	if res.OK {
		t.Fatal("Solve succeeded on unparseable output")
	}
	if res.Cause != types.CauseSolverParse {
		t.Errorf("cause = %q, want %q", res.Cause, types.CauseSolverParse)
	}
	if res.Raw != "I refuse to answer in JSON." {
		t.Errorf("raw = %q, want the model text preserved", res.Raw)
	}
}

func TestSolve_EmptyAnswerIsSentinel(t *testing.T) {
	gw := &fixedGateway{response: `{"reasoning": "unsure", "final_answer": ""}`}
	s := New(gw, testRole())

	res := s.Solve(context.Background(), "src", "q?")
	if res.OK {
		t.Fatal("Solve accepted an empty answer")
	}
	if res.Cause != types.CauseSolverParse {
		t.Errorf("cause = %q, want %q", res.Cause, types.CauseSolverParse)
	}
}

func TestSolve_GatewayExhaustion(t *testing.T) {
	gw := &fixedGateway{err: &gateway.Error{Attempts: 4, Err: errors.New("connection refused")}}
	s := New(gw, testRole())

	res := s.Solve(context.Background(), "src", "q?")
	if res.OK {
		t.Fatal("Solve succeeded despite gateway exhaustion")
	}
	if res.Cause != types.CauseGatewayExhausted {
		t.Errorf("cause = %q, want %q", res.Cause, types.CauseGatewayExhausted)
	}
	if gw.calls != 1 {
		t.Errorf("gateway called %d times, want 1", gw.calls)
	}
}
