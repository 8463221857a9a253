package ranking

import (
	"testing"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePractitioners() []corpus.Practitioner {
	return []corpus.Practitioner{
		{
			ID: "p1", Name: "Dr Alice Heart", Specialty: "Cardiology",
			Description: "Specialist in chest pain and cardiac arrhythmia management.",
			RatingValue: 4.9, ReviewCount: 120, YearsExperience: 22, Verified: true,
			ProcedureGroups: []corpus.ProcedureGroup{{Name: "Coronary Angioplasty", AdmissionCount: 160}},
		},
		{
			ID: "p2", Name: "Dr Bob Skin", Specialty: "Dermatology",
			Description: "Treats acne and eczema.",
			RatingValue: 4.0,
		},
		{
			ID: "p3", Name: "Dr Carol Bones", Specialty: "Orthopedics",
			Description: "Hip and knee replacement surgery.",
		},
	}
}

func TestRank_ReturnsExactlyMinTopNAndCandidates(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	results := Rank(samplePractitioners(), Query{SearchQuery: "cardiac chest pain"}, cfg, nil, 2)
	assert.Len(t, results, 2)
}

func TestRank_ReturnsAllWhenTopNExceedsCandidates(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	results := Rank(samplePractitioners(), Query{SearchQuery: "cardiac"}, cfg, nil, 50)
	assert.Len(t, results, 3)
}

func TestRank_HigherRatingAndReviewsOutranksPlainMatch(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	results := Rank(samplePractitioners(), Query{SearchQuery: "cardiac chest pain arrhythmia"}, cfg, nil, 3)
	require.NotEmpty(t, results)
	assert.Equal(t, "p1", results[0].Practitioner.ID)
}

func TestRank_EmptyQueryReturnsInputOrderWithDescendingScores(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	results := Rank(samplePractitioners(), Query{SearchQuery: "   "}, cfg, nil, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "p1", results[0].Practitioner.ID)
	assert.Equal(t, "p2", results[1].Practitioner.ID)
	assert.Equal(t, "p3", results[2].Practitioner.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestRank_ZeroScoreFillerPolicyFillsRemainder(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	candidates := append(samplePractitioners(), corpus.Practitioner{ID: "p4", Name: "Dr Dan Unrelated", Specialty: "Unrelated"})
	results := Rank(candidates, Query{SearchQuery: "cardiac"}, cfg, nil, 4)
	require.Len(t, results, 4)
	assert.Equal(t, "p1", results[0].Practitioner.ID)
}

func TestComputeIDF_IsNeverNegative(t *testing.T) {
	docs := buildDocuments(samplePractitioners(), config.DefaultFieldWeights())
	idf := computeIDF(docs)
	for term, v := range idf {
		assert.GreaterOrEqualf(t, v, 0.0, "term %q had negative idf", term)
	}
}

func TestNormalize_ConstantVectorYieldsOne(t *testing.T) {
	assert.Equal(t, 1.0, normalize(5, 5, 5))
}

func TestNormalize_MinMaxRange(t *testing.T) {
	assert.Equal(t, 0.0, normalize(0, 0, 10))
	assert.Equal(t, 1.0, normalize(10, 0, 10))
	assert.Equal(t, 0.5, normalize(5, 0, 10))
}

func TestExactPhraseBonus_FullQuerySubstringAddsTwo(t *testing.T) {
	bonus := exactPhraseBonus("chest pain", "specialist in chest pain management", nil)
	assert.Equal(t, 2.0, bonus)
}

func TestExactPhraseBonus_PhraseMatchesAreCumulative(t *testing.T) {
	phrases := twoAndThreeWordPhrases(tokenize("chest pain management"))
	bonus := exactPhraseBonus("unrelated query text", "specialist in chest pain management today", phrases)
	assert.Greater(t, bonus, 0.0)
}

func TestProximityBoost_AppliesOnlyWithPostcodeAndDistance(t *testing.T) {
	dist := 1.5
	p := corpus.Practitioner{Distance: &dist}
	assert.Equal(t, 1.5, proximityBoost(Query{IsPostcode: true}, p))
	assert.Equal(t, 1.0, proximityBoost(Query{IsPostcode: false}, p))
	assert.Equal(t, 1.0, proximityBoost(Query{IsPostcode: true}, corpus.Practitioner{}))
}

func TestQualityBoost_NoProceduresIsIdentityForAdmissions(t *testing.T) {
	boost := qualityBoost(corpus.Practitioner{}, []string{"cardiology"})
	assert.Equal(t, 1.0, boost)
}

func TestQualityBoost_ZeroRelevantAdmissionsAppliesPenalty(t *testing.T) {
	p := corpus.Practitioner{ProcedureGroups: []corpus.ProcedureGroup{{Name: "Unrelated Procedure", AdmissionCount: 10}}}
	boost := qualityBoost(p, []string{"cardiology"})
	assert.Equal(t, 0.85, boost)
}

func TestTokenize_DropsShortTokensAndLowercases(t *testing.T) {
	tokens := tokenize("The Quick, Fox-99 runs AT dawn!")
	assert.NotContains(t, tokens, "at")
	assert.Contains(t, tokens, "quick")
	assert.Contains(t, tokens, "fox")
	assert.Contains(t, tokens, "dawn")
}
