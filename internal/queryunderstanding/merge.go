package queryunderstanding

import (
	"sort"
	"strings"
)

// merge applies the deterministic merger rules from §4.1 to the three
// task outputs, producing the SessionContext fields that depend on more
// than one task.
func merge(gen generalIntent, clin clinicalIntent, qPatient string) (IntentData, []string, []string, []string, []Subspecialty) {
	isAmbiguous := !(gen.Confidence >= 0.75 &&
		(gen.Specificity == SpecificityNamedProcedure || gen.Specificity == SpecificityConfirmedDiagnosis))

	intentTerms := dedupCaseInsensitive(append(append([]string{}, clin.ExpansionTerms...), gen.ExpansionTerms...))

	anchorPhrases := append([]string{}, gen.AnchorPhrases...)
	if len(anchorPhrases) > 3 {
		anchorPhrases = anchorPhrases[:3]
	}

	var negativeTerms []string
	if !isAmbiguous {
		negativeTerms = dedupCaseInsensitive(append(append([]string{}, clin.NegativeTerms...), gen.NegativeTerms...))
	}

	subspecialties := mergeSubspecialties(gen.LikelySubspecialties, clin.LikelySubspecialties)

	safeLaneTerms := deriveSafeLaneTerms(anchorPhrases, intentTerms)

	intentData := IntentData{
		Goal:             gen.Goal,
		Specificity:      gen.Specificity,
		Confidence:       gen.Confidence,
		IsQueryAmbiguous: isAmbiguous,
	}

	return intentData, intentTerms, anchorPhrases, negativeTerms, subspecialtiesWithSafeLane(subspecialties, safeLaneTerms)
}

// subspecialtiesWithSafeLane is a no-op passthrough kept so merge's return
// signature stays stable if safe-lane derivation later needs subspecialty
// context; currently safeLaneTerms is threaded separately by the caller.
func subspecialtiesWithSafeLane(s []Subspecialty, _ []string) []Subspecialty { return s }

// dedupCaseInsensitive removes case-insensitive duplicates, keeping the
// first occurrence and its original casing, preserving order.
func dedupCaseInsensitive(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// mergeSubspecialties dedupes by case-insensitive name (keeping the entry
// with the max confidence across sources), keeps only confidence >= 0.4, sorts by
// confidence descending, and caps at 3.
func mergeSubspecialties(a, b []Subspecialty) []Subspecialty {
	best := make(map[string]Subspecialty)
	order := make([]string, 0, len(a)+len(b))

	add := func(list []Subspecialty) {
		for _, s := range list {
			key := strings.ToLower(strings.TrimSpace(s.Name))
			if key == "" {
				continue
			}
			if existing, ok := best[key]; !ok {
				best[key] = s
				order = append(order, key)
			} else if s.Confidence > existing.Confidence {
				best[key] = s
			}
		}
	}
	add(a)
	add(b)

	filtered := make([]Subspecialty, 0, len(order))
	for _, key := range order {
		s := best[key]
		if s.Confidence >= 0.4 {
			filtered = append(filtered, s)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Confidence > filtered[j].Confidence
	})

	if len(filtered) > 3 {
		filtered = filtered[:3]
	}
	return filtered
}

// deriveSafeLaneTerms returns the first <=4 high-confidence symptom/
// condition terms. When the classifier doesn't supply a dedicated set, it
// is derived from anchor phrases, falling back to intent terms.
func deriveSafeLaneTerms(anchorPhrases, intentTerms []string) []string {
	source := anchorPhrases
	if len(source) == 0 {
		source = intentTerms
	}
	if len(source) > 4 {
		source = source[:4]
	}
	return append([]string{}, source...)
}
