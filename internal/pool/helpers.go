package pool

import (
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/aman-health/practitioner-rank/internal/corpus"
)

var overlapTokenRe = regexp.MustCompile(`[^a-z0-9]+`)

// tokenizeForOverlap is a minimal standalone tokenizer for the
// keyword-overlap sub-pool lens, deliberately independent of
// internal/ranking's tokenizer so the two retrieval lenses stay
// uncorrelated.
func tokenizeForOverlap(text string) []string {
	lower := strings.ToLower(text)
	normalized := overlapTokenRe.ReplaceAllString(lower, " ")
	return strings.Fields(normalized)
}

func countTokenMatches(bag string, tokens []string) int {
	lowerBag := strings.ToLower(bag)
	count := 0
	for _, t := range tokens {
		if strings.Contains(lowerBag, t) {
			count++
		}
	}
	return count
}

// scoredCandidate pairs a practitioner with a keyword-overlap match
// count for the multi_source sub-pool's independent retrieval lens.
type scoredCandidate struct {
	practitioner corpus.Practitioner
	matches      int
}

func sortScoredDescending(results []scoredCandidate) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].matches > results[j].matches
	})
}

func truncate(items []corpus.Practitioner, n int) []corpus.Practitioner {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func annotate(items []corpus.Practitioner, source string) []Candidate {
	out := make([]Candidate, len(items))
	for i, p := range items {
		out[i] = Candidate{Practitioner: p, Sources: []string{source}}
	}
	return out
}

// unionAnnotated merges candidate groups, deduplicating by practitioner
// id and merging Sources for ids that appear in more than one group.
func unionAnnotated(groups ...[]Candidate) []Candidate {
	order := make([]string, 0)
	byID := make(map[string]*Candidate)

	for _, group := range groups {
		for _, c := range group {
			if existing, ok := byID[c.Practitioner.ID]; ok {
				existing.Sources = append(existing.Sources, c.Sources...)
				continue
			}
			clone := c
			byID[c.Practitioner.ID] = &clone
			order = append(order, c.Practitioner.ID)
		}
	}

	out := make([]Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

func capPool(candidates []Candidate, max int) []Candidate {
	if len(candidates) > max {
		return candidates[:max]
	}
	return candidates
}

func idSet(items []corpus.Practitioner) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, p := range items {
		set[p.ID] = true
	}
	return set
}

// sampleWithoutReplacement draws up to n items from source without
// replacement, using the injected RNG for deterministic, reproducible
// benchmark runs.
func sampleWithoutReplacement(rng *rand.Rand, source []corpus.Practitioner, n int) []corpus.Practitioner {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if n > len(source) {
		n = len(source)
	}

	shuffled := make([]corpus.Practitioner, len(source))
	copy(shuffled, source)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	return shuffled[:n]
}
