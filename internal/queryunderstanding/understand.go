package queryunderstanding

import (
	"context"
	"strings"

	"github.com/aman-health/practitioner-rank/internal/llm"
	"golang.org/x/sync/errgroup"
)

// Understand runs the three classification tasks in parallel and merges
// their outputs into a SessionContext. The only failure mode is an empty
// query after trimming, which returns a well-formed empty context rather
// than an error — a single task's own failure is absorbed by its
// conservative fallback and never surfaces here.
func Understand(ctx context.Context, client llm.Client, req Request) (SessionContext, error) {
	trimmed := strings.TrimSpace(req.UserQuery)
	if trimmed == "" {
		return emptySessionContext(req), nil
	}
	req.UserQuery = trimmed

	var (
		insightsResult insights
		generalResult  generalIntent
		clinicalResult clinicalIntent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		insightsResult = runInsights(gctx, client, req)
		return nil
	})
	g.Go(func() error {
		generalResult = runGeneralIntent(gctx, client, req)
		return nil
	})
	g.Go(func() error {
		clinicalResult = runClinicalIntent(gctx, client, req)
		return nil
	})

	// Each task absorbs its own failure into a conservative fallback and
	// every goroutine returns nil, so Wait returns nil here; a cancelled
	// parent context reaches each task as a failed call and is absorbed
	// the same way.
	if err := g.Wait(); err != nil {
		return SessionContext{}, err
	}

	qPatient := qPatientFromConversation(req)

	intentData, intentTerms, anchorPhrases, negativeTerms, subspecialties := merge(generalResult, clinicalResult, qPatient)

	safeLaneTerms := deriveSafeLaneTerms(anchorPhrases, intentTerms)
	if len(insightsResult.Symptoms) > 0 && len(safeLaneTerms) == 0 {
		safeLaneTerms = deriveSafeLaneTerms(insightsResult.Symptoms, intentTerms)
	}

	return SessionContext{
		QPatient:             qPatient,
		QPatientOriginal:     req.UserQuery,
		IntentTerms:          intentTerms,
		AnchorPhrases:        anchorPhrases,
		SafeLaneTerms:        safeLaneTerms,
		LikelySubspecialties: subspecialties,
		NegativeTerms:        negativeTerms,
		IntentData:           intentData,
	}, nil
}

// qPatientFromConversation returns the last conversation turn trimmed
// verbatim, falling back to the current query when there is no history.
func qPatientFromConversation(req Request) string {
	for i := len(req.Conversation) - 1; i >= 0; i-- {
		if turn := strings.TrimSpace(req.Conversation[i]); turn != "" {
			return turn
		}
	}
	return req.UserQuery
}

func emptySessionContext(req Request) SessionContext {
	return SessionContext{
		QPatient:         qPatientFromConversation(req),
		QPatientOriginal: req.UserQuery,
		IntentData:       conservativeIntentData(),
	}
}

func conservativeIntentData() IntentData {
	gen := conservativeGeneralIntent()
	return IntentData{
		Goal:             gen.Goal,
		Specificity:      gen.Specificity,
		Confidence:       gen.Confidence,
		IsQueryAmbiguous: true,
	}
}
