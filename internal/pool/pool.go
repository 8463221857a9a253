// Package pool builds de-biased candidate pools for offline
// ground-truth generation (§4.6). Each pool is a union of sub-pools
// sampled through different lenses of the same corpus, deduplicated by
// practitioner id.
package pool

import (
	"math/rand"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
	"github.com/aman-health/practitioner-rank/internal/ranking"
)

// Strategy selects which sub-pool Build assembles.
type Strategy string

const (
	StrategyRankingOnly  Strategy = "ranking_only"
	StrategyHybridBM25   Strategy = "hybrid_bm25"
	StrategyHybridRandom Strategy = "hybrid_random"
	StrategyMultiSource  Strategy = "multi_source"
)

// DefaultStrategy matches the spec-documented default.
const DefaultStrategy = StrategyHybridBM25

// Candidate is one pool member annotated with the sub-pool(s) that
// selected it, for benchmark provenance.
type Candidate struct {
	Practitioner corpus.Practitioner
	Sources      []string
}

// Builder assembles candidate pools from a fixed corpus. RNG is
// injectable for deterministic, reproducible benchmark runs.
type Builder struct {
	Corpus []corpus.Practitioner
	Config config.RankingConfig
	RNG    *rand.Rand
}

// Build runs the full pipeline (§4.1-4.4) and BM25-only scoring once,
// then assembles the sub-pool named by strategy.
func Build(b Builder, query ranking.Query, session queryunderstanding.SessionContext, strategy Strategy) []Candidate {
	pipelineRanked := pipelineTop(b, query, session, 30)
	bm25Only := bm25OnlyTop(b, query, 40)

	switch strategy {
	case StrategyRankingOnly:
		return capPool(annotate(pipelineRanked, "ranking_only"), 30)
	case StrategyHybridRandom:
		return buildHybridRandom(b, pipelineRanked)
	case StrategyMultiSource:
		return buildMultiSource(b, query, pipelineRanked, bm25Only)
	case StrategyHybridBM25:
		fallthrough
	default:
		return buildHybridBM25(pipelineRanked, bm25Only)
	}
}

func pipelineTop(b Builder, query ranking.Query, session queryunderstanding.SessionContext, n int) []corpus.Practitioner {
	stageA := ranking.Rank(b.Corpus, query, b.Config, nil, n)
	rescored := ranking.Rescore(stageA, session, b.Config)
	out := make([]corpus.Practitioner, 0, n)
	for _, r := range rescored {
		out = append(out, r.Practitioner)
		if len(out) >= n {
			break
		}
	}
	return out
}

func bm25OnlyTop(b Builder, query ranking.Query, n int) []corpus.Practitioner {
	stageA := ranking.Rank(b.Corpus, query, b.Config, nil, n)
	out := make([]corpus.Practitioner, len(stageA))
	for i, s := range stageA {
		out[i] = s.Practitioner
	}
	return out
}

// keywordOverlapTop ranks by the count of query tokens present in a
// simple practitioner-text bag (name, specialty, description), used
// only by the multi_source sub-pool as an independent retrieval lens.
func keywordOverlapTop(corpusSlice []corpus.Practitioner, queryTokens []string, n int) []corpus.Practitioner {
	results := make([]scoredCandidate, len(corpusSlice))
	for i, p := range corpusSlice {
		bag := p.Name + " " + p.Specialty + " " + p.Description
		results[i] = scoredCandidate{practitioner: p, matches: countTokenMatches(bag, queryTokens)}
	}

	sortScoredDescending(results)

	out := make([]corpus.Practitioner, 0, n)
	for _, r := range results {
		out = append(out, r.practitioner)
		if len(out) >= n {
			break
		}
	}
	return out
}

func buildHybridBM25(pipelineRanked, bm25Only []corpus.Practitioner) []Candidate {
	pipelineTop20 := truncate(pipelineRanked, 20)
	union := unionAnnotated(
		annotate(pipelineTop20, "ranking_only"),
		annotate(bm25Only, "bm25_only"),
	)
	return capPool(union, 50)
}

func buildHybridRandom(b Builder, pipelineRanked []corpus.Practitioner) []Candidate {
	pipelineTop20 := truncate(pipelineRanked, 20)
	excluded := idSet(pipelineRanked)

	remaining := make([]corpus.Practitioner, 0, len(b.Corpus))
	for _, p := range b.Corpus {
		if !excluded[p.ID] {
			remaining = append(remaining, p)
		}
	}

	randomN := sampleWithoutReplacement(b.RNG, remaining, 20)

	union := unionAnnotated(
		annotate(pipelineTop20, "ranking_only"),
		annotate(randomN, "random"),
	)
	return capPool(union, 45)
}

func buildMultiSource(b Builder, query ranking.Query, pipelineRanked, bm25Only []corpus.Practitioner) []Candidate {
	pipelineTop15 := truncate(pipelineRanked, 15)
	bm25Top20 := truncate(bm25Only, 20)

	queryText := resolveQueryText(query)
	keywordTop15 := keywordOverlapTop(b.Corpus, tokenizeForOverlap(queryText), 15)

	random10 := sampleWithoutReplacement(b.RNG, b.Corpus, 10)

	union := unionAnnotated(
		annotate(pipelineTop15, "ranking_only"),
		annotate(bm25Top20, "bm25_only"),
		annotate(keywordTop15, "keyword_overlap"),
		annotate(random10, "random"),
	)
	return capPool(union, 55)
}

func resolveQueryText(q ranking.Query) string {
	if q.Session != nil {
		return q.Session.QPatient
	}
	return q.SearchQuery
}
