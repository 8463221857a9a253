package queryunderstanding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aman-health/practitioner-rank/internal/llm"
)

const insightsPrompt = `Summarize the conversation below into JSON with keys: symptoms (array), preferences (array), urgency (string), inferred_specialty (string, optional), inferred_location (string, optional), summary (string).

Conversation:
%s

Respond with JSON only.`

const generalIntentPrompt = `Classify the patient query below. Respond with JSON: {"goal": one of "diagnostic_workup"|"procedure_intervention"|"ongoing_management"|"second_opinion", "specificity": one of "symptom_only"|"confirmed_diagnosis"|"named_procedure", "confidence": number 0-1, "expansion_terms": array of 6-10 strings, "negative_terms": array of strings, "anchor_phrases": array of 0-3 strings (only explicit mentions), "likely_subspecialties": array of {"name": string, "confidence": number 0-1}, max 3}.

Query: %s

Respond with JSON only.`

const clinicalIntentPrompt = `Classify the clinical content of the patient query below. Respond with JSON: {"primary_intent": string, "expansion_terms": array of 8-12 strings, "negative_terms": array of 5-8 strings, "likely_subspecialties": array of {"name": string, "confidence": number 0-1}, max 3}.

Query: %s

Respond with JSON only.`

// runInsights issues the insights extraction task. On any failure it
// returns the conservative fallback, never an error: per §4.1 a single
// task's failure must not fail the request.
func runInsights(ctx context.Context, client llm.Client, req Request) insights {
	prompt := fmt.Sprintf(insightsPrompt, strings.Join(req.Conversation, "\n"))
	raw, err := client.Classify(ctx, prompt)
	if err != nil {
		return conservativeInsights()
	}

	var result insights
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return conservativeInsights()
	}
	return result
}

// runGeneralIntent issues the general intent classification task,
// returning the conservative fallback on failure.
func runGeneralIntent(ctx context.Context, client llm.Client, req Request) generalIntent {
	prompt := fmt.Sprintf(generalIntentPrompt, req.UserQuery)
	raw, err := client.Classify(ctx, prompt)
	if err != nil {
		return conservativeGeneralIntent()
	}

	var result generalIntent
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return conservativeGeneralIntent()
	}
	return result
}

// runClinicalIntent issues the clinical intent classification task,
// returning the conservative fallback on failure.
func runClinicalIntent(ctx context.Context, client llm.Client, req Request) clinicalIntent {
	prompt := fmt.Sprintf(clinicalIntentPrompt, req.UserQuery)
	raw, err := client.Classify(ctx, prompt)
	if err != nil {
		return conservativeClinicalIntent()
	}

	var result clinicalIntent
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return conservativeClinicalIntent()
	}
	return result
}

// extractJSON trims a model response down to its outermost JSON object,
// tolerating surrounding prose some models add despite instructions.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "{}"
	}
	return raw[start : end+1]
}
