package ranking

import (
	"strings"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
	"github.com/aman-health/practitioner-rank/internal/tables"
)

// Query describes what Stage A should search for and how.
type Query struct {
	// Structured mode: set Session and TwoStage to drive query building
	// from patient intent rather than legacy raw fields.
	Session  *queryunderstanding.SessionContext
	TwoStage bool
	NameFilter string

	// Legacy mode: used when Session is nil or TwoStage is false.
	Specialty string
	Location  string
	Insurance string
	SearchQuery string

	// EquivalenceNormalization enables the bounded alias expansion in
	// either mode.
	EquivalenceNormalization bool

	// IsPostcode marks the location as a postcode (not a city), gating
	// the proximity boost.
	IsPostcode bool
}

// buildQueryText renders the final BM25 query string per §4.3's two
// construction modes.
func buildQueryText(q Query, cfg config.RankingConfig) string {
	var text string
	if q.TwoStage && q.Session != nil {
		text = buildStructuredQuery(q, cfg)
	} else {
		text = buildLegacyQuery(q)
	}

	if q.EquivalenceNormalization {
		text = tables.NormalizeEquivalence(text)
	}
	return text
}

func buildStructuredQuery(q Query, cfg config.RankingConfig) string {
	s := q.Session
	parts := []string{s.QPatient}

	safeLane := s.SafeLaneTerms
	if len(safeLane) > 4 {
		safeLane = safeLane[:4]
	}
	parts = append(parts, safeLane...)

	if q.NameFilter != "" {
		parts = append(parts, q.NameFilter)
	}
	parts = append(parts, s.AnchorPhrases...)

	if cfg.IntentTermsInBM25 {
		maxIntentTerms := cfg.StageAIntentTermsCap
		if maxIntentTerms > 20 {
			maxIntentTerms = 20
		}
		intentTerms := s.IntentTerms
		if len(intentTerms) > maxIntentTerms {
			intentTerms = intentTerms[:maxIntentTerms]
		}
		parts = append(parts, intentTerms...)
	}

	return strings.Join(nonEmpty(parts), " ")
}

// buildLegacyQuery concatenates the legacy free-text fields. The
// hand-curated expansion map is applied uniformly via
// EquivalenceNormalization in buildQueryText, matching the structured
// path instead of maintaining a second table.
func buildLegacyQuery(q Query) string {
	parts := []string{q.Specialty, q.Location, q.Insurance, q.SearchQuery}
	return strings.Join(nonEmpty(parts), " ")
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
