package progressive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/aman-health/practitioner-rank/internal/llm"
	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
)

const fitEvaluationPrompt = `Evaluate how well this practitioner fits the patient's need below. Respond with JSON: {"category": one of "excellent"|"good"|"ill_fit", "reason": a brief one-sentence explanation}.

Patient need: %s

Practitioner:
Name: %s
Specialty: %s
Description: %s

Respond with JSON only.`

// LLMFitEvaluator is the external fit-evaluator collaborator named in
// §4.5: one LLM call per newly-seen candidate, labeling it excellent,
// good, or ill_fit with a brief reason.
type LLMFitEvaluator struct {
	Client llm.Client
}

// Evaluate classifies each candidate independently. A per-candidate
// failure (network error, unparseable response) degrades that candidate
// to FitGood rather than failing the whole evaluation, matching the
// "never block on an optional upstream call" pattern used for the
// query-understanding tasks.
func (e LLMFitEvaluator) Evaluate(ctx context.Context, candidates []corpus.Practitioner, session queryunderstanding.SessionContext) ([]Evaluation, error) {
	out := make([]Evaluation, len(candidates))
	for i, p := range candidates {
		out[i] = e.evaluateOne(ctx, p, session)
	}
	return out, nil
}

func (e LLMFitEvaluator) evaluateOne(ctx context.Context, p corpus.Practitioner, session queryunderstanding.SessionContext) Evaluation {
	prompt := fmt.Sprintf(fitEvaluationPrompt, session.QPatient, p.Name, p.Specialty, p.Description)

	raw, err := e.Client.Classify(ctx, prompt)
	if err != nil {
		return Evaluation{PractitionerID: p.ID, Category: FitGood, Reason: "evaluator unavailable, defaulted to good"}
	}

	var result struct {
		Category string `json:"category"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return Evaluation{PractitionerID: p.ID, Category: FitGood, Reason: "unparseable evaluator response, defaulted to good"}
	}

	return Evaluation{PractitionerID: p.ID, Category: categoryFromString(result.Category), Reason: result.Reason}
}

func categoryFromString(s string) FitCategory {
	switch FitCategory(s) {
	case FitExcellent:
		return FitExcellent
	case FitIllFit:
		return FitIllFit
	default:
		return FitGood
	}
}

// extractJSON trims a model response down to its outermost JSON object,
// mirroring internal/queryunderstanding's tolerance for surrounding
// prose some models add despite instructions.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "{}"
	}
	return raw[start : end+1]
}
