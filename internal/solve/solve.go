// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package solve answers proposed questions from the source material
// alone. The solver never sees the proposer's reference answer; it is
// an independent oracle testing whether the question is answerable
// from the source, not a restatement of the reference.
package solve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/synth-engine/internal/gateway"
	"github.com/pdiddy/synth-engine/internal/modelout"
	"github.com/pdiddy/synth-engine/pkg/types"
)

const systemPrompt = `You are a careful reader. You answer questions using only the source material you are given, never outside knowledge. You respond with a single JSON object and nothing else.`

var solvePromptTmpl = template.Must(template.New("solve").Parse(`Answer the question below using only the source material. If the source does not contain enough information, answer with your best supported attempt and say so in the reasoning.

Respond with a JSON object with these fields:
- "reasoning": a short trace of how the source supports your answer
- "final_answer": the answer itself

Do not include any text outside the JSON object.

Question:
{{.Question}}

Source material:
{{.Source}}
`))

// Result is the tagged outcome of one solve attempt. A failed Result
// is never an error; the controller records it as a rejected iteration.
type Result struct {
	Attempt types.SolverAttempt
	OK      bool
	Cause   string
	Raw     string
}

// Solver answers questions through a gateway.
type Solver struct {
	gw   gateway.Gateway
	role types.RoleConfig
}

// New builds a Solver.
func New(gw gateway.Gateway, role types.RoleConfig) *Solver {
	return &Solver{gw: gw, role: role}
}

// attemptJSON mirrors the JSON object the prompt demands. FinalAnswer
// stays raw so non-string values can be coerced at the boundary.
type attemptJSON struct {
	Reasoning   string          `json:"reasoning"`
	FinalAnswer json.RawMessage `json:"final_answer"`
}

// Solve answers one question from the source material.
func (s *Solver) Solve(ctx context.Context, source, question string) Result {
	var buf bytes.Buffer
	err := solvePromptTmpl.Execute(&buf, struct {
		Question string
		Source   string
	}{question, source})
	if err != nil {
		return Result{Cause: types.CauseSolverParse, Raw: fmt.Sprintf("rendering prompt: %v", err)}
	}

	text, err := s.gw.Invoke(ctx, gateway.Request{
		System:      systemPrompt,
		User:        buf.String(),
		Model:       s.role.Model,
		Temperature: s.role.Temperature,
		MaxTokens:   s.role.MaxTokens,
	})
	if err != nil {
		return Result{Cause: types.CauseGatewayExhausted, Raw: err.Error()}
	}

	attempt, ok := parseAttempt(text)
	if !ok {
		return Result{Cause: types.CauseSolverParse, Raw: text}
	}
	return Result{Attempt: attempt, OK: true, Raw: text}
}

// parseAttempt extracts the attempt JSON and coerces final_answer to
// plain text, whatever its JSON type.
func parseAttempt(text string) (types.SolverAttempt, bool) {
	payload, ok := modelout.ExtractJSON(text)
	if !ok {
		return types.SolverAttempt{}, false
	}

	var aj attemptJSON
	if err := json.Unmarshal([]byte(payload), &aj); err != nil {
		return types.SolverAttempt{}, false
	}

	answer := strings.TrimSpace(modelout.CoerceText(aj.FinalAnswer))
	if answer == "" {
		return types.SolverAttempt{}, false
	}

	return types.SolverAttempt{
		Answer:    answer,
		Reasoning: strings.TrimSpace(aj.Reasoning),
	}, true
}
