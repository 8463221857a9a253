package ranking

import (
	"sort"
	"strings"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
)

// Rescored is a Stage B result: a Stage A candidate with its additive
// rescoring deltas and final rank.
type Rescored struct {
	Scored
	IntentDelta       float64
	AnchorDelta       float64
	SafeLaneDelta     float64
	SubspecialtyBoost float64
	NegativeDelta     float64
	Delta             float64
	FinalScore        float64
	Rank              int
}

// Rescore applies Stage B's additive rescoring to a Stage A scored list.
// It is a pure function of its inputs: Stage A output plus the session
// context and ranking config. If every rescoring signal is empty
// (intent_terms, anchor_phrases, and negative_terms all unset), Stage B
// is a pass-through.
func Rescore(stageA []Scored, session queryunderstanding.SessionContext, cfg config.RankingConfig) []Rescored {
	if len(stageA) == 0 {
		return nil
	}

	if len(session.IntentTerms) == 0 && len(session.AnchorPhrases) == 0 && len(session.NegativeTerms) == 0 {
		return passThrough(stageA)
	}

	results := make([]Rescored, len(stageA))
	for i, s := range stageA {
		text := strings.ToLower(buildWeightedText(s.Practitioner, cfg.FieldWeights))

		intentDelta := float64(countSubstringMatches(text, session.IntentTerms)) * cfg.IntentTermWeight

		anchorDelta := float64(countSubstringMatches(text, session.AnchorPhrases)) * cfg.AnchorPhraseWeight
		if cfg.AnchorCap > 0 && anchorDelta > cfg.AnchorCap {
			anchorDelta = cfg.AnchorCap
		}

		safeLaneDelta := safeLaneDelta(countSubstringMatches(text, session.SafeLaneTerms), cfg)

		subspecialtyBoost := subspecialtyBoost(s.Practitioner.Subspecialties, session.LikelySubspecialties, cfg)

		negativeDelta := negativeDelta(countSubstringMatches(text, session.NegativeTerms), cfg)

		delta := intentDelta + anchorDelta + safeLaneDelta + negativeDelta + subspecialtyBoost

		var final float64
		if session.IntentData.IsQueryAmbiguous {
			final = maxFloat(0, delta)
		} else {
			final = maxFloat(0, s.Score+delta)
		}

		results[i] = Rescored{
			Scored:            s,
			IntentDelta:       intentDelta,
			AnchorDelta:       anchorDelta,
			SafeLaneDelta:     safeLaneDelta,
			SubspecialtyBoost: subspecialtyBoost,
			NegativeDelta:     negativeDelta,
			Delta:             delta,
			FinalScore:        final,
		}
	}

	sortAndRank(results)
	return results
}

func countSubstringMatches(text string, terms []string) int {
	count := 0
	for _, term := range terms {
		term = strings.TrimSpace(strings.ToLower(term))
		if term != "" && strings.Contains(text, term) {
			count++
		}
	}
	return count
}

func safeLaneDelta(matches int, cfg config.RankingConfig) float64 {
	switch {
	case matches >= 3:
		return cfg.SafeLane3OrMore
	case matches == 2:
		return cfg.SafeLane2
	case matches == 1:
		return cfg.SafeLane1
	default:
		return 0
	}
}

func negativeDelta(matches int, cfg config.RankingConfig) float64 {
	switch {
	case matches >= 4:
		return cfg.Negative4
	case matches >= 2:
		return cfg.Negative2
	case matches == 1:
		return cfg.Negative1
	default:
		return 0
	}
}

// subspecialtyBoost sums confidence * subspecialty_factor over
// likely_subspecialties whose name is a case-insensitive substring match
// against the practitioner's own subspecialties field (not the shared
// BM25 weighted-text blob), capped at subspecialty_cap.
func subspecialtyBoost(practitionerSubspecialties []string, likely []queryunderstanding.Subspecialty, cfg config.RankingConfig) float64 {
	joined := strings.ToLower(strings.Join(practitionerSubspecialties, " "))

	var boost float64
	for _, s := range likely {
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name == "" {
			continue
		}
		if strings.Contains(joined, name) {
			boost += s.Confidence * cfg.SubspecialtyFactor
		}
	}
	if cfg.SubspecialtyCap > 0 && boost > cfg.SubspecialtyCap {
		boost = cfg.SubspecialtyCap
	}
	return boost
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func passThrough(stageA []Scored) []Rescored {
	results := make([]Rescored, len(stageA))
	for i, s := range stageA {
		results[i] = Rescored{Scored: s, FinalScore: s.Score}
	}
	sortAndRank(results)
	return results
}

// sortAndRank sorts descending by FinalScore (stable, preserving Stage A
// order on ties, which carries forward the zero-score filler policy) and
// assigns ranks 1..N.
func sortAndRank(results []Rescored) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}
