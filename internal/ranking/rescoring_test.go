package ranking

import (
	"testing"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageAFixture() []Scored {
	return []Scored{
		{Practitioner: corpus.Practitioner{ID: "p1", Specialty: "Cardiology", Description: "treats chest pain and arrhythmia"}, Score: 1.0},
		{Practitioner: corpus.Practitioner{ID: "p2", Specialty: "Dermatology", Description: "treats acne"}, Score: 0.5},
	}
}

func TestRescore_PassThroughWhenNoSignals(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	results := Rescore(stageAFixture(), queryunderstanding.SessionContext{}, cfg)
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].Practitioner.ID)
	assert.Equal(t, 1.0, results[0].FinalScore)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 2, results[1].Rank)
}

func TestRescore_IntentDeltaBoostsMatchingCandidate(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	session := queryunderstanding.SessionContext{IntentTerms: []string{"arrhythmia"}}
	results := Rescore(stageAFixture(), session, cfg)
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].Practitioner.ID)
	assert.Greater(t, results[0].IntentDelta, 0.0)
	assert.Equal(t, 0.0, results[1].IntentDelta)
}

func TestRescore_AmbiguousQueryDiscardsBM25Ordering(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	stageA := []Scored{
		{Practitioner: corpus.Practitioner{ID: "high-bm25-no-intent", Description: "no match here"}, Score: 10.0},
		{Practitioner: corpus.Practitioner{ID: "low-bm25-has-intent", Description: "chest pain specialist"}, Score: 0.1},
	}
	session := queryunderstanding.SessionContext{
		IntentTerms: []string{"chest pain"},
		IntentData:  queryunderstanding.IntentData{IsQueryAmbiguous: true},
	}
	results := Rescore(stageA, session, cfg)
	require.Len(t, results, 2)
	assert.Equal(t, "low-bm25-has-intent", results[0].Practitioner.ID)
}

func TestRescore_NonAmbiguousAddsDeltaToBM25(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	session := queryunderstanding.SessionContext{
		IntentTerms: []string{"arrhythmia"},
		IntentData:  queryunderstanding.IntentData{IsQueryAmbiguous: false},
	}
	results := Rescore(stageAFixture(), session, cfg)
	require.Len(t, results, 2)
	assert.InDelta(t, 1.0+cfg.IntentTermWeight, results[0].FinalScore, 1e-9)
}

func TestRescore_NegativeTermsPenalizeByTier(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	session := queryunderstanding.SessionContext{
		NegativeTerms: []string{"chest", "arrhythmia"},
		IntentData:    queryunderstanding.IntentData{IsQueryAmbiguous: false},
	}
	results := Rescore(stageAFixture(), session, cfg)
	require.Len(t, results, 2)
	var p1 Rescored
	for _, r := range results {
		if r.Practitioner.ID == "p1" {
			p1 = r
		}
	}
	assert.Equal(t, cfg.Negative2, p1.NegativeDelta)
}

func TestRescore_SubspecialtyBoostCappedAtConfig(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	cfg.SubspecialtyCap = 0.1
	cfg.SubspecialtyFactor = 1.0
	stageA := []Scored{
		{Practitioner: corpus.Practitioner{ID: "p1", Specialty: "Cardiology", Subspecialties: []string{"electrophysiology", "cardiology"}, Description: "treats chest pain and arrhythmia"}, Score: 1.0},
		{Practitioner: corpus.Practitioner{ID: "p2", Specialty: "Dermatology", Description: "treats acne"}, Score: 0.5},
	}
	session := queryunderstanding.SessionContext{
		IntentTerms:          []string{"arrhythmia"},
		LikelySubspecialties: []queryunderstanding.Subspecialty{{Name: "cardiology", Confidence: 0.9}},
	}
	results := Rescore(stageA, session, cfg)
	require.Len(t, results, 2)
	for _, r := range results {
		if r.Practitioner.ID == "p1" {
			assert.Equal(t, 0.1, r.SubspecialtyBoost)
		}
	}
}

func TestRescore_SubspecialtyBoostIgnoresAccidentalOverlapInDescriptionOrSpecialty(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	cfg.SubspecialtyFactor = 1.0
	// p1's specialty/description mention "cardiology" but its structured
	// subspecialties field does not — the boost must not fire on that
	// accidental overlap with the shared BM25 weighted-text blob.
	stageA := []Scored{
		{Practitioner: corpus.Practitioner{ID: "p1", Specialty: "Cardiology", Description: "general cardiology clinic", Subspecialties: []string{"heart failure"}}, Score: 1.0},
	}
	session := queryunderstanding.SessionContext{
		IntentTerms:          []string{"general"},
		LikelySubspecialties: []queryunderstanding.Subspecialty{{Name: "cardiology", Confidence: 0.9}},
	}
	results := Rescore(stageA, session, cfg)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].SubspecialtyBoost)
}

func TestRescore_FloorsFinalScoreAtZero(t *testing.T) {
	cfg := config.DefaultRankingConfig()
	stageA := []Scored{{Practitioner: corpus.Practitioner{ID: "p1", Description: "penalized term"}, Score: 0.05}}
	session := queryunderstanding.SessionContext{
		NegativeTerms: []string{"penalized", "term", "x", "y"},
		IntentData:    queryunderstanding.IntentData{IsQueryAmbiguous: false},
	}
	results := Rescore(stageA, session, cfg)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].FinalScore)
}
