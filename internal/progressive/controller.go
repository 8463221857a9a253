// Package progressive implements the bounded progressive-deepening
// controller (V6): Init -> Rank -> Evaluate -> Decide -> {Terminate |
// Refetch -> Merge -> Evaluate -> Decide}.
package progressive

import (
	"context"
	"sort"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
	"github.com/aman-health/practitioner-rank/internal/ranking"
)

// FitCategory is the fit-evaluator's label for a candidate.
type FitCategory string

const (
	FitExcellent FitCategory = "excellent"
	FitGood      FitCategory = "good"
	FitIllFit    FitCategory = "ill_fit"
)

func (c FitCategory) rank() int {
	switch c {
	case FitExcellent:
		return 0
	case FitGood:
		return 1
	default:
		return 2
	}
}

// FetchStrategy selects which stage's output Refetch deepens.
type FetchStrategy string

const (
	FetchStageB FetchStrategy = "stage-b"
	FetchStageA FetchStrategy = "stage-a"
)

// Evaluation is the fit-evaluator's verdict for one candidate.
type Evaluation struct {
	PractitionerID string
	Category       FitCategory
	Reason         string
}

// FitEvaluator labels newly seen candidates. It is the out-of-core
// collaborator for §4.5's external fit-evaluator LLM; only candidates
// not previously judged are passed in, to save cost.
type FitEvaluator interface {
	Evaluate(ctx context.Context, candidates []corpus.Practitioner, session queryunderstanding.SessionContext) ([]Evaluation, error)
}

// Params are the controller's bounds, all with spec-documented
// defaults.
type Params struct {
	TargetShortlistK    int
	TargetTopK          int
	BatchSize           int
	MaxIterations       int
	MaxProfilesReviewed int
	FetchStrategy       FetchStrategy
}

// DefaultParams returns the spec-documented defaults.
func DefaultParams() Params {
	return Params{
		TargetShortlistK:    12,
		TargetTopK:          3,
		BatchSize:           12,
		MaxIterations:       5,
		MaxProfilesReviewed: 30,
		FetchStrategy:       FetchStageB,
	}
}

// Result is an annotated shortlist candidate.
type Result struct {
	Practitioner    corpus.Practitioner
	Score           float64
	FitCategory     FitCategory
	EvaluationReason string
	IterationFound  int
}

// Run executes the controller's state machine and returns the
// shortlist truncated to K plus the reason it terminated.
func Run(ctx context.Context, pool Pool, session queryunderstanding.SessionContext, cfg config.RankingConfig, evaluator FitEvaluator, params Params) ([]Result, string) {
	state := newRunState()

	for {
		if err := ctx.Err(); err != nil {
			return state.shortlist(params.TargetShortlistK), "cancelled"
		}

		ranked := rankBatch(pool, session, cfg, state, params)
		newCandidates := state.recordNew(ranked)

		if len(newCandidates) > 0 {
			evaluations, err := evaluator.Evaluate(ctx, candidatePractitioners(newCandidates), session)
			if err != nil {
				if ctx.Err() != nil {
					return state.shortlist(params.TargetShortlistK), "cancelled"
				}
				// An evaluator failure degrades to "good" for the batch
				// rather than blocking termination entirely.
				evaluations = defaultEvaluations(newCandidates, FitGood)
			}
			state.applyEvaluations(evaluations, state.iteration)
		}

		state.mergeAndRank()

		if reason, done := state.decide(pool, params); done {
			return state.shortlist(params.TargetShortlistK), reason
		}

		state.iteration++
	}
}

func candidatePractitioners(candidates []ranking.Scored) []corpus.Practitioner {
	out := make([]corpus.Practitioner, len(candidates))
	for i, c := range candidates {
		out[i] = c.Practitioner
	}
	return out
}

func defaultEvaluations(candidates []ranking.Scored, category FitCategory) []Evaluation {
	out := make([]Evaluation, len(candidates))
	for i, c := range candidates {
		out[i] = Evaluation{PractitionerID: c.Practitioner.ID, Category: category, Reason: "fit evaluator unavailable"}
	}
	return out
}

// rankBatch runs Stage A+B at the current batch depth (batchSize *
// iteration) per the configured fetch strategy, skipping already-seen
// ids from iteration 2 onward.
func rankBatch(pool Pool, session queryunderstanding.SessionContext, cfg config.RankingConfig, state *runState, params Params) []ranking.Scored {
	depth := params.BatchSize * (state.iteration + 1)
	candidates := pool.Candidates()

	stageA := ranking.Rank(candidates, ranking.Query{TwoStage: true, Session: &session}, cfg, nil, depth)

	var results []ranking.Scored
	if params.FetchStrategy == FetchStageA {
		results = stageA
	} else {
		rescored := ranking.Rescore(stageA, session, cfg)
		results = make([]ranking.Scored, len(rescored))
		for i, r := range rescored {
			results[i] = r.Scored
			results[i].Score = r.FinalScore
		}
	}

	unseen := make([]ranking.Scored, 0, len(results))
	for _, r := range results {
		if !state.seen[r.Practitioner.ID] {
			unseen = append(unseen, r)
		}
	}
	return unseen
}

func sortByCategoryThenScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		ci, cj := results[i].FitCategory.rank(), results[j].FitCategory.rank()
		if ci != cj {
			return ci < cj
		}
		return results[i].Score > results[j].Score
	})
}
