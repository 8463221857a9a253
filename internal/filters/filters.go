// Package filters implements the order-sensitive hard-filter pipeline:
// pure functions over the corpus that each return a narrowed sequence. If
// any stage reduces the set to empty, the pipeline short-circuits and
// returns empty immediately rather than relaxing any filter.
package filters

import (
	"context"
	"regexp"
	"strings"

	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/aman-health/practitioner-rank/internal/tables"
)

// LocationQuery carries the caller's location preference, consumed by the
// Location collaborator filter (§6: out of scope, interface only).
type LocationQuery struct {
	City         string
	Postcode     string
	RadiusCenter string
	RadiusMiles  float64
}

// Empty reports whether no location preference was supplied.
func (q LocationQuery) Empty() bool {
	return q.City == "" && q.Postcode == "" && q.RadiusCenter == ""
}

// LocationFilter is the geocoder collaborator contract: it narrows the
// candidate set by location and may annotate survivors with a numeric
// Distance in miles, required for the BM25 engine's proximity boost.
type LocationFilter interface {
	Filter(ctx context.Context, practitioners []corpus.Practitioner, q LocationQuery) ([]corpus.Practitioner, error)
}

// NoopLocationFilter passes every candidate through unchanged. Used when
// no geocoder collaborator is wired in (e.g. benchmark sub-pools that
// don't exercise location).
type NoopLocationFilter struct{}

// Filter implements LocationFilter by returning practitioners unchanged.
func (NoopLocationFilter) Filter(_ context.Context, practitioners []corpus.Practitioner, _ LocationQuery) ([]corpus.Practitioner, error) {
	return practitioners, nil
}

// Request is the caller-supplied filter preference set for one /rank
// request.
type Request struct {
	NHSMode        bool
	Insurance      string
	Gender         string // "male", "female", or "" (no preference)
	SpecialtyQuery string
	Location       LocationQuery
	AgeGroup       string
	Languages      []string
}

var nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9\s]`)

// normalizeQuery lowercases and strips everything but alphanumerics and
// whitespace, per the manual-specialty stage's matching rule.
func normalizeQuery(s string) string {
	return strings.TrimSpace(nonAlphanumericRe.ReplaceAllString(strings.ToLower(s), " "))
}

// Apply runs the hard-filter pipeline in spec order, short-circuiting as
// soon as any stage empties the set.
func Apply(ctx context.Context, practitioners []corpus.Practitioner, req Request, location LocationFilter) ([]corpus.Practitioner, error) {
	result := filterBlacklist(practitioners)
	if len(result) == 0 {
		return result, nil
	}

	if req.NHSMode {
		result = filterNHS(result)
		if len(result) == 0 {
			return result, nil
		}
	}

	if req.Insurance != "" {
		result = filterInsurance(result, req.Insurance)
		if len(result) == 0 {
			return result, nil
		}
	}

	if req.Gender == "male" || req.Gender == "female" {
		result = filterGender(result, req.Gender)
		if len(result) == 0 {
			return result, nil
		}
	}

	if req.SpecialtyQuery != "" {
		result = filterSpecialty(result, req.SpecialtyQuery)
		if len(result) == 0 {
			return result, nil
		}
	}

	if !req.Location.Empty() {
		if location == nil {
			location = NoopLocationFilter{}
		}
		filtered, err := location.Filter(ctx, result, req.Location)
		if err != nil {
			return nil, err
		}
		result = filtered
		if len(result) == 0 {
			return result, nil
		}
	}

	if req.AgeGroup != "" {
		result = filterAgeGroup(result, req.AgeGroup)
		if len(result) == 0 {
			return result, nil
		}
	}

	if len(req.Languages) > 0 {
		result = filterLanguages(result, req.Languages)
	}

	return result, nil
}

func filterBlacklist(in []corpus.Practitioner) []corpus.Practitioner {
	out := make([]corpus.Practitioner, 0, len(in))
	for _, p := range in {
		if !p.Blacklisted {
			out = append(out, p)
		}
	}
	return out
}

func filterNHS(in []corpus.Practitioner) []corpus.Practitioner {
	out := make([]corpus.Practitioner, 0, len(in))
	for _, p := range in {
		if p.IsNHS() {
			out = append(out, p)
		}
	}
	return out
}

func filterInsurance(in []corpus.Practitioner, requested string) []corpus.Practitioner {
	out := make([]corpus.Practitioner, 0, len(in))
	for _, p := range in {
		for _, ins := range p.InsuranceProviders {
			if tables.InsuranceMatches(ins.CanonicalName, requested) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func filterSpecialty(in []corpus.Practitioner, query string) []corpus.Practitioner {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return in
	}

	out := make([]corpus.Practitioner, 0, len(in))
	for _, p := range in {
		if specialtyMatches(p, normalized) {
			out = append(out, p)
		}
	}
	return out
}

func specialtyMatches(p corpus.Practitioner, normalizedQuery string) bool {
	candidates := []string{normalizeQuery(p.Specialty), normalizeQuery(p.Title), normalizeQuery(p.ClinicalExpertiseRaw)}
	for _, s := range p.Subspecialties {
		candidates = append(candidates, normalizeQuery(s))
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if strings.Contains(c, normalizedQuery) || strings.Contains(normalizedQuery, c) {
			return true
		}
	}
	return false
}

func filterAgeGroup(in []corpus.Practitioner, requested string) []corpus.Practitioner {
	normalized := strings.ToLower(strings.TrimSpace(requested))
	out := make([]corpus.Practitioner, 0, len(in))
	for _, p := range in {
		for _, ag := range p.PatientAgeGroup {
			if ageGroupMatches(strings.ToLower(ag), normalized) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// ageGroupMatches applies the pediatric/paediatric equivalence on top of a
// plain substring match.
func ageGroupMatches(field, requested string) bool {
	if strings.Contains(field, requested) || strings.Contains(requested, field) {
		return true
	}
	fieldAlt := strings.NewReplacer("paediatric", "pediatric", "pediatric", "paediatric").Replace(field)
	requestedAlt := strings.NewReplacer("paediatric", "pediatric", "pediatric", "paediatric").Replace(requested)
	return strings.Contains(fieldAlt, requestedAlt) || strings.Contains(requestedAlt, fieldAlt) ||
		strings.Contains(field, requestedAlt) || strings.Contains(requestedAlt, field)
}

func filterLanguages(in []corpus.Practitioner, requested []string) []corpus.Practitioner {
	out := make([]corpus.Practitioner, 0, len(in))
	for _, p := range in {
		if practitionerSpeaksAny(p, requested) {
			out = append(out, p)
		}
	}
	return out
}

func practitionerSpeaksAny(p corpus.Practitioner, requested []string) bool {
	for _, lang := range p.Languages {
		langLower := strings.ToLower(lang)
		for _, r := range requested {
			rLower := strings.ToLower(strings.TrimSpace(r))
			if rLower == "" {
				continue
			}
			if strings.Contains(langLower, rLower) || strings.Contains(rLower, langLower) {
				return true
			}
		}
	}
	return false
}
