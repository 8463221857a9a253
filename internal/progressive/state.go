package progressive

import (
	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/aman-health/practitioner-rank/internal/ranking"
)

// Pool is the candidate source the controller deepens into. Real
// callers back it with the corpus post hard-filters; benchmarks back
// it with a fixed in-memory slice.
type Pool interface {
	Candidates() []corpus.Practitioner
}

// SlicePool is a Pool over a fixed in-memory slice.
type SlicePool []corpus.Practitioner

func (p SlicePool) Candidates() []corpus.Practitioner { return p }

// runState tracks everything that must survive across iterations: seen
// ids, the merged/annotated result set, and how many profiles have been
// evaluated so far.
type runState struct {
	iteration      int
	seen           map[string]bool
	results        map[string]*Result
	totalEvaluated int
	lastNewCount   int
}

func newRunState() *runState {
	return &runState{
		seen:    make(map[string]bool),
		results: make(map[string]*Result),
	}
}

// recordNew merges freshly ranked candidates into state, marking them
// seen, and returns the ones that are genuinely new this call.
func (s *runState) recordNew(ranked []ranking.Scored) []ranking.Scored {
	fresh := make([]ranking.Scored, 0, len(ranked))
	for _, r := range ranked {
		if s.seen[r.Practitioner.ID] {
			continue
		}
		s.seen[r.Practitioner.ID] = true
		s.results[r.Practitioner.ID] = &Result{
			Practitioner:   r.Practitioner,
			Score:          r.Score,
			IterationFound: s.iteration,
		}
		fresh = append(fresh, r)
	}
	s.lastNewCount = len(fresh)
	return fresh
}

func (s *runState) applyEvaluations(evals []Evaluation, iteration int) {
	for _, e := range evals {
		if r, ok := s.results[e.PractitionerID]; ok {
			r.FitCategory = e.Category
			r.EvaluationReason = e.Reason
		}
	}
	s.totalEvaluated += len(evals)
}

// mergeAndRank re-sorts the full merged result set by quality category
// (excellent > good > ill_fit) then by score.
func (s *runState) mergeAndRank() {
	all := s.allResults()
	sortByCategoryThenScore(all)
	for i, r := range all {
		s.results[r.Practitioner.ID] = &all[i]
	}
}

func (s *runState) allResults() []Result {
	out := make([]Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, *r)
	}
	sortByCategoryThenScore(out)
	return out
}

// decide evaluates the three termination conditions plus pool
// exhaustion, returning the termination reason when the controller
// should stop.
func (s *runState) decide(pool Pool, params Params) (string, bool) {
	ranked := s.allResults()

	topK := ranked
	if len(topK) > params.TargetTopK {
		topK = topK[:params.TargetTopK]
	}
	if len(topK) == params.TargetTopK && allExcellent(topK) {
		return "top-k-excellent", true
	}

	if s.totalEvaluated >= params.MaxProfilesReviewed {
		return "max-profiles-reviewed", true
	}

	if s.iteration+1 >= params.MaxIterations {
		return "max-iterations", true
	}

	if s.iteration > 0 && s.lastNewCount == 0 {
		return "no-more-candidates", true
	}
	if len(s.seen) >= len(pool.Candidates()) {
		return "no-more-candidates", true
	}

	return "", false
}

func allExcellent(results []Result) bool {
	for _, r := range results {
		if r.FitCategory != FitExcellent {
			return false
		}
	}
	return true
}

// shortlist truncates the merged, ranked result set to k.
func (s *runState) shortlist(k int) []Result {
	all := s.allResults()
	if len(all) > k {
		all = all[:k]
	}
	return all
}
