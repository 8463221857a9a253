package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/aman-health/practitioner-rank/internal/tables"
)

// Scored is a Stage A result: a practitioner with its BM25 score and the
// component breakdown diagnostics need.
type Scored struct {
	Practitioner   corpus.Practitioner
	BaseBM25       float64
	QualityBoost   float64
	ExactBonus     float64
	ProximityBoost float64
	SemanticScore  float64
	NormBM25       float64
	NormSemantic   float64
	Score          float64
}

// document is the per-practitioner indexed representation built once per
// Rank call.
type document struct {
	practitioner corpus.Practitioner
	weightedText string
	tokens       []string
	termFreq     map[string]int
}

// SemanticScorer resolves a precomputed semantic score in [0,1] for a
// practitioner, by id with fuzzy-name fallback. It is the out-of-core
// collaborator for optional semantic mixing (§4.3); nil disables mixing.
type SemanticScorer interface {
	Score(p corpus.Practitioner) (float64, bool)
}

// Rank runs Stage A BM25 scoring over candidates and returns exactly
// min(topN, len(candidates)) results per the zero-score filler policy.
// An empty query after trimming returns the input order with descending
// synthetic scores.
func Rank(candidates []corpus.Practitioner, q Query, cfg config.RankingConfig, semantic SemanticScorer, topN int) []Scored {
	queryText := strings.TrimSpace(buildQueryText(q, cfg))
	if queryText == "" {
		return fallbackOrder(candidates, topN)
	}

	docs := buildDocuments(candidates, cfg.FieldWeights)
	idf := computeIDF(docs)
	queryTokens := tokenize(queryText)
	phrases := twoAndThreeWordPhrases(tokenize(queryText))

	results := make([]Scored, len(docs))
	for i, d := range docs {
		base := scoreBM25(d, queryTokens, idf, cfg.K1, cfg.B, avgDocLength(docs))
		quality := qualityBoost(d.practitioner, queryTokens)
		exact := exactPhraseBonus(queryText, d.weightedText, phrases)
		proximity := proximityBoost(q, d.practitioner)

		sem, hasSem := 0.0, false
		if semantic != nil {
			sem, hasSem = semantic.Score(d.practitioner)
			if hasSem {
				sem = clamp01(sem)
			}
		}

		results[i] = Scored{
			Practitioner:   d.practitioner,
			BaseBM25:       base * quality * proximity,
			QualityBoost:   quality,
			ExactBonus:     exact,
			ProximityBoost: proximity,
			SemanticScore:  sem,
		}
		results[i].BaseBM25 += exact
		if !hasSem {
			results[i].SemanticScore = -1 // sentinel: absent from normalization
		}
	}

	normalizeAndCombine(results, cfg.Semantic)
	sortAndFillZeros(results)

	if topN > 0 && topN < len(results) {
		results = results[:topN]
	}
	return results
}

func buildDocuments(candidates []corpus.Practitioner, weights config.FieldWeights) []document {
	docs := make([]document, len(candidates))
	for i, p := range candidates {
		text := buildWeightedText(p, weights)
		tokens := tokenize(text)
		freq := make(map[string]int, len(tokens))
		for _, t := range tokens {
			freq[t]++
		}
		docs[i] = document{practitioner: p, weightedText: strings.ToLower(text), tokens: tokens, termFreq: freq}
	}
	return docs
}

func avgDocLength(docs []document) float64 {
	if len(docs) == 0 {
		return 0
	}
	total := 0
	for _, d := range docs {
		total += len(d.tokens)
	}
	return float64(total) / float64(len(docs))
}

// computeIDF computes per-term IDF with a non-negative clamp:
// max(0, log((N - df + 0.5)/(df + 0.5) + 1)).
func computeIDF(docs []document) map[string]float64 {
	df := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]bool, len(d.termFreq))
		for t := range d.termFreq {
			if !seen[t] {
				df[t]++
				seen[t] = true
			}
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, dfCount := range df {
		v := math.Log((n-float64(dfCount)+0.5)/(float64(dfCount)+0.5) + 1)
		idf[term] = math.Max(0, v)
	}
	return idf
}

func scoreBM25(d document, queryTokens []string, idf map[string]float64, k1, b, avgLen float64) float64 {
	docLen := float64(len(d.tokens))
	lengthRatio := 0.0
	if avgLen > 0 {
		lengthRatio = docLen / avgLen
	}

	var score float64
	for _, qt := range dedupStrings(queryTokens) {
		tf := float64(d.termFreq[qt])
		if tf == 0 {
			continue
		}
		termIDF := idf[qt]
		numerator := tf * (k1 + 1)
		denominator := tf + k1*(1-b+b*lengthRatio)
		score += termIDF * numerator / denominator
	}
	return score
}

func dedupStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// qualityBoost computes the multiplicative quality boost: rating,
// review-count, experience, verified, and relevant-admissions tiers.
func qualityBoost(p corpus.Practitioner, queryTokens []string) float64 {
	boost := 1.0

	switch {
	case p.RatingValue >= 4.8:
		boost *= 1.3
	case p.RatingValue >= 4.5:
		boost *= 1.2
	case p.RatingValue >= 4.0:
		boost *= 1.1
	}

	switch {
	case p.ReviewCount >= 100:
		boost *= 1.2
	case p.ReviewCount >= 50:
		boost *= 1.15
	case p.ReviewCount >= 20:
		boost *= 1.1
	}

	switch {
	case p.YearsExperience >= 20:
		boost *= 1.15
	case p.YearsExperience >= 10:
		boost *= 1.1
	}

	if p.Verified {
		boost *= 1.1
	}

	boost *= relevantAdmissionsBoost(p, queryTokens)

	return boost
}

// relevantAdmissionsBoost implements the "relevant admissions" tiered
// multiplier: a procedure is relevant if its name contains a meaningful
// query term, or contains >=2 meaningful terms and has >=2 words.
func relevantAdmissionsBoost(p corpus.Practitioner, queryTokens []string) float64 {
	if len(p.ProcedureGroups) == 0 {
		return 1.0
	}

	meaningful := make([]string, 0, len(queryTokens))
	for _, t := range queryTokens {
		if tables.IsMeaningful(t) {
			meaningful = append(meaningful, t)
		}
	}

	relevantAdmissions := 0
	anyRelevant := false
	for _, group := range p.ProcedureGroups {
		name := strings.ToLower(group.Name)
		matchCount := 0
		for _, term := range meaningful {
			if strings.Contains(name, term) {
				matchCount++
			}
		}
		// A procedure is relevant if its name contains any meaningful
		// term, or contains >=2 meaningful terms and has >=2 words; the
		// second clause is subsumed by the first but kept to mirror the
		// documented rule.
		words := len(strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == '-' }))
		isRelevant := matchCount >= 1 || (matchCount >= 2 && words >= 2)
		if isRelevant {
			anyRelevant = true
			relevantAdmissions += group.AdmissionCount
		}
	}

	if !anyRelevant {
		return 0.85
	}

	switch {
	case relevantAdmissions >= 150:
		return 2.5
	case relevantAdmissions >= 100:
		return 2.2
	case relevantAdmissions >= 75:
		return 2.0
	case relevantAdmissions >= 50:
		return 1.7
	case relevantAdmissions >= 30:
		return 1.5
	case relevantAdmissions >= 20:
		return 1.4
	case relevantAdmissions >= 10:
		return 1.3
	case relevantAdmissions >= 5:
		return 1.2
	case relevantAdmissions >= 1:
		return 1.1
	default:
		return 1.0
	}
}

// exactPhraseBonus is additive: +2.0 if the full lowercased query is a
// substring of the weighted text; +1.0 per matched 2- or 3-word phrase.
func exactPhraseBonus(queryText, weightedTextLower string, phrases []string) float64 {
	bonus := 0.0
	if strings.Contains(weightedTextLower, strings.ToLower(queryText)) {
		bonus += 2.0
	}
	for _, phrase := range phrases {
		if strings.Contains(weightedTextLower, phrase) {
			bonus += 1.0
		}
	}
	return bonus
}

// proximityBoost is multiplicative and applies only when the query
// carries a postcode (not a city) and the practitioner has a numeric
// distance.
func proximityBoost(q Query, p corpus.Practitioner) float64 {
	if !q.IsPostcode || p.Distance == nil {
		return 1.0
	}
	miles := *p.Distance
	switch {
	case miles <= 1:
		return 1.6
	case miles <= 2:
		return 1.5
	case miles <= 3:
		return 1.4
	case miles <= 5:
		return 1.3
	case miles <= 8:
		return 1.2
	case miles <= 12:
		return 1.1
	case miles <= 18:
		return 1.05
	default:
		return 1.0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalizeAndCombine min-max normalizes BaseBM25 and SemanticScore (when
// present) to [0,1] and computes the combined Score = normBM25 + normSem
// * weight.
func normalizeAndCombine(results []Scored, sem config.SemanticOptions) {
	minBM25, maxBM25 := minMaxBM25(results)
	minSem, maxSem, haveSem := minMaxSemantic(results)

	for i := range results {
		results[i].NormBM25 = normalize(results[i].BaseBM25, minBM25, maxBM25)

		if haveSem && results[i].SemanticScore >= 0 {
			results[i].NormSemantic = normalize(results[i].SemanticScore, minSem, maxSem)
		} else {
			results[i].NormSemantic = 0
			results[i].SemanticScore = 0
		}

		score := results[i].NormBM25
		if sem.Enabled && haveSem {
			score += results[i].NormSemantic * sem.Weight
		}
		results[i].Score = score
	}
}

func minMaxBM25(results []Scored) (float64, float64) {
	if len(results) == 0 {
		return 0, 0
	}
	min, max := results[0].BaseBM25, results[0].BaseBM25
	for _, r := range results {
		if r.BaseBM25 < min {
			min = r.BaseBM25
		}
		if r.BaseBM25 > max {
			max = r.BaseBM25
		}
	}
	return min, max
}

func minMaxSemantic(results []Scored) (float64, float64, bool) {
	have := false
	min, max := 0.0, 0.0
	for _, r := range results {
		if r.SemanticScore < 0 {
			continue
		}
		if !have {
			min, max = r.SemanticScore, r.SemanticScore
			have = true
			continue
		}
		if r.SemanticScore < min {
			min = r.SemanticScore
		}
		if r.SemanticScore > max {
			max = r.SemanticScore
		}
	}
	return min, max, have
}

// normalize min-max normalizes v into [0,1]; the constant-vector case
// (max == min) yields 1.0.
func normalize(v, min, max float64) float64 {
	if max == min {
		return 1.0
	}
	return (v - min) / (max - min)
}

// sortAndFillZeros sorts descending by Score, preserving original order
// on ties (the zero-score filler policy: non-zero items first, then
// zero-scored items in their original BM25 order).
func sortAndFillZeros(results []Scored) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// fallbackOrder handles the empty-query failure mode: input order with
// descending synthetic scores, still respecting topN.
func fallbackOrder(candidates []corpus.Practitioner, topN int) []Scored {
	n := len(candidates)
	results := make([]Scored, n)
	for i, p := range candidates {
		results[i] = Scored{
			Practitioner: p,
			Score:        float64(n - i),
		}
	}
	if topN > 0 && topN < len(results) {
		results = results[:topN]
	}
	return results
}
