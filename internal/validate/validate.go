// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate scores agreement between the proposer's reference
// answer and the solver's independent prediction. The reference answer
// is ground truth for this pipeline; the validator does not judge
// external correctness.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/pdiddy/synth-engine/internal/gateway"
	"github.com/pdiddy/synth-engine/internal/modelout"
	"github.com/pdiddy/synth-engine/pkg/types"
)

const systemPrompt = `You are a strict grader. You compare a predicted answer against a reference answer and score their semantic and factual agreement. You respond with a single JSON object and nothing else.`

var validatePromptTmpl = template.Must(template.New("validate").Parse(`Score how well the predicted answer agrees with the reference answer for the question below. Treat the reference answer as ground truth. Score on a 1-10 scale: 10 means full semantic and factual agreement, 1 means no meaningful agreement. Wording differences do not matter; meaning does.

Respond with a JSON object with these fields:
- "score": the agreement score (1-10)
- "rationale": one or two sentences explaining the score

Do not include any text outside the JSON object.

Question:
{{.Question}}

Reference answer:
{{.Reference}}

Predicted answer:
{{.Predicted}}
`))

// Result is the tagged outcome of one validation. Cause is set only on
// gateway exhaustion; a malformed score is not a failure, it collapses
// to the minimum score with Accept=false so one bad response cannot
// corrupt the curriculum.
type Result struct {
	Verdict types.ValidationVerdict
	OK      bool
	Cause   string
	Raw     string
}

// Validator scores answers through a gateway.
type Validator struct {
	gw   gateway.Gateway
	role types.RoleConfig
}

// New builds a Validator.
func New(gw gateway.Gateway, role types.RoleConfig) *Validator {
	return &Validator{gw: gw, role: role}
}

// verdictJSON mirrors the JSON object the prompt demands. Score stays
// raw so quoted numbers can be coerced at the boundary.
type verdictJSON struct {
	Score     json.RawMessage `json:"score"`
	Rationale string          `json:"rationale"`
}

// Validate scores the predicted answer against the reference answer.
// accept = score >= threshold, on the shared 1-10 scale.
func (v *Validator) Validate(ctx context.Context, question, reference, predicted string, threshold float64) Result {
	var buf bytes.Buffer
	err := validatePromptTmpl.Execute(&buf, struct {
		Question  string
		Reference string
		Predicted string
	}{question, reference, predicted})
	if err != nil {
		return Result{Verdict: rejectVerdict(err.Error()), OK: true}
	}

	text, err := v.gw.Invoke(ctx, gateway.Request{
		System:      systemPrompt,
		User:        buf.String(),
		Model:       v.role.Model,
		Temperature: v.role.Temperature,
		MaxTokens:   v.role.MaxTokens,
	})
	if err != nil {
		return Result{Cause: types.CauseGatewayExhausted, Raw: err.Error()}
	}

	return Result{Verdict: parseVerdict(text, threshold), OK: true, Raw: text}
}

// parseVerdict extracts the verdict JSON. Any parse failure defaults to
// reject at the minimum score rather than raising.
func parseVerdict(text string, threshold float64) types.ValidationVerdict {
	payload, ok := modelout.ExtractJSON(text)
	if !ok {
		return rejectVerdict("unparseable validator output")
	}

	var vj verdictJSON
	if err := json.Unmarshal([]byte(payload), &vj); err != nil {
		return rejectVerdict("unparseable validator output")
	}

	score, ok := modelout.CoerceScore(vj.Score, types.ScaleMin, types.ScaleMax)
	if !ok {
		return rejectVerdict("validator returned no numeric score")
	}

	return types.ValidationVerdict{
		Score:     score,
		Accept:    score >= threshold,
		Rationale: strings.TrimSpace(vj.Rationale),
	}
}

// rejectVerdict is the verdict recorded when output cannot be parsed.
func rejectVerdict(rationale string) types.ValidationVerdict {
	return types.ValidationVerdict{
		Score:     types.ScaleMin,
		Accept:    false,
		Rationale: rationale,
	}
}
