// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package propose generates candidate question/answer pairs at a target
// difficulty, steered by the accepted history so successive proposals
// stay novel and climb the curriculum.
package propose

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/synth-engine/internal/gateway"
	"github.com/pdiddy/synth-engine/internal/modelout"
	"github.com/pdiddy/synth-engine/pkg/types"
)

// historyWindow bounds how many recent accepted pairs appear in the
// prompt. Older pairs are summarized by the difficulty range line.
const historyWindow = 4

const systemPrompt = `You are a training-data synthesis system. You write question/answer pairs grounded strictly in the source material you are given. You respond with a single JSON object and nothing else.`

// seedPromptTmpl is the simplified first-iteration prompt: no history
// section exists yet.
var seedPromptTmpl = template.Must(template.New("seed").Parse(`Write one {{.Category}} question about the source material below, together with a reference answer.

Target difficulty: {{printf "%.1f" .Difficulty}} on a 1-10 scale (1 = recall of a single stated fact, 10 = synthesis across the whole source).

Respond with a JSON object with these fields:
- "question": the question text
- "answer": the reference answer, fully supported by the source
- "difficulty": your own difficulty estimate on the 1-10 scale
- "justification": one sentence on why the question matches the target difficulty

Do not include any text outside the JSON object.

Source material:
{{.Source}}
`))

// historyPromptTmpl extends the seed prompt with the accepted history
// so the model avoids duplicates and keeps raising difficulty.
var historyPromptTmpl = template.Must(template.New("history").Parse(`Write one {{.Category}} question about the source material below, together with a reference answer.

Target difficulty: {{printf "%.1f" .Difficulty}} on a 1-10 scale (1 = recall of a single stated fact, 10 = synthesis across the whole source).

Questions already generated (difficulties {{printf "%.1f" .MinDifficulty}}-{{printf "%.1f" .MaxDifficulty}} are covered; do not repeat or trivially rephrase any of them):
{{range .History}}- [{{printf "%.1f" .Difficulty}}] {{.Question}}
{{end}}
The new question must be noticeably harder than the covered range and must not overlap with the listed questions.

Respond with a JSON object with these fields:
- "question": the question text
- "answer": the reference answer, fully supported by the source
- "difficulty": your own difficulty estimate on the 1-10 scale
- "justification": one sentence on why the question matches the target difficulty

Do not include any text outside the JSON object.

Source material:
{{.Source}}
`))

// Result is the tagged outcome of one proposal: either Pair is
// populated (OK), or Cause names the failure and Raw preserves the
// model text for the audit trail. A failed Result is never an error;
// the controller records it as a rejected iteration.
type Result struct {
	Pair  types.ProposedPair
	OK    bool
	Cause string
	Raw   string
}

// Proposer generates proposals through a gateway.
type Proposer struct {
	gw           gateway.Gateway
	role         types.RoleConfig
	parseRetries int
}

// New builds a Proposer. parseRetries bounds regeneration attempts on
// malformed output; values below zero are treated as the default (2).
func New(gw gateway.Gateway, role types.RoleConfig, parseRetries int) *Proposer {
	if parseRetries < 0 {
		parseRetries = 2
	}
	return &Proposer{gw: gw, role: role, parseRetries: parseRetries}
}

// proposalJSON mirrors the JSON object the prompt demands.
type proposalJSON struct {
	Question      string          `json:"question"`
	Answer        string          `json:"answer"`
	Difficulty    json.RawMessage `json:"difficulty"`
	Justification string          `json:"justification"`
}

// Propose generates one candidate pair at the target difficulty. The
// first iteration (empty history) uses the seed prompt variant.
func (p *Proposer) Propose(ctx context.Context, source string, category types.TaskCategory, target float64, history []types.AcceptedPair) Result {
	prompt, err := renderPrompt(source, category, target, history)
	if err != nil {
		return Result{Cause: types.CauseProposerParse, Raw: err.Error()}
	}

	req := gateway.Request{
		System:      systemPrompt,
		User:        prompt,
		Model:       p.role.Model,
		Temperature: p.role.Temperature,
		MaxTokens:   p.role.MaxTokens,
	}

	var lastRaw string
	for attempt := 0; attempt <= p.parseRetries; attempt++ {
		text, err := p.gw.Invoke(ctx, req)
		if err != nil {
			var gwErr *gateway.Error
			if errors.As(err, &gwErr) {
				return Result{Cause: types.CauseGatewayExhausted, Raw: gwErr.Error()}
			}
			return Result{Cause: types.CauseGatewayExhausted, Raw: err.Error()}
		}

		pair, ok := parseProposal(text, target)
		if ok {
			return Result{Pair: pair, OK: true, Raw: text}
		}
		lastRaw = text
	}

	return Result{Cause: types.CauseProposerParse, Raw: lastRaw}
}

// renderPrompt picks the seed or history template and executes it.
func renderPrompt(source string, category types.TaskCategory, target float64, history []types.AcceptedPair) (string, error) {
	var buf bytes.Buffer

	if len(history) == 0 {
		err := seedPromptTmpl.Execute(&buf, struct {
			Category   types.TaskCategory
			Difficulty float64
			Source     string
		}{category, target, source})
		if err != nil {
			return "", fmt.Errorf("rendering seed prompt: %w", err)
		}
		return buf.String(), nil
	}

	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	minD, maxD := history[0].Difficulty, history[0].Difficulty
	for _, h := range history {
		if h.Difficulty < minD {
			minD = h.Difficulty
		}
		if h.Difficulty > maxD {
			maxD = h.Difficulty
		}
	}

	err := historyPromptTmpl.Execute(&buf, struct {
		Category      types.TaskCategory
		Difficulty    float64
		MinDifficulty float64
		MaxDifficulty float64
		History       []types.AcceptedPair
		Source        string
	}{category, target, minD, maxD, window, source})
	if err != nil {
		return "", fmt.Errorf("rendering history prompt: %w", err)
	}
	return buf.String(), nil
}

// parseProposal extracts and validates the proposal JSON from model
// text. A missing or malformed difficulty falls back to the target:
// the controller's target is authoritative for the curriculum anyway.
func parseProposal(text string, target float64) (types.ProposedPair, bool) {
	payload, ok := modelout.ExtractJSON(text)
	if !ok {
		return types.ProposedPair{}, false
	}

	var pj proposalJSON
	if err := json.Unmarshal([]byte(payload), &pj); err != nil {
		return types.ProposedPair{}, false
	}
	if strings.TrimSpace(pj.Question) == "" || strings.TrimSpace(pj.Answer) == "" {
		return types.ProposedPair{}, false
	}

	difficulty := target
	if d, ok := modelout.CoerceScore(pj.Difficulty, types.ScaleMin, types.ScaleMax); ok {
		difficulty = d
	}

	return types.ProposedPair{
		Question:      strings.TrimSpace(pj.Question),
		Answer:        strings.TrimSpace(pj.Answer),
		Difficulty:    difficulty,
		Justification: strings.TrimSpace(pj.Justification),
	}, true
}
