package filters

import (
	"regexp"
	"strings"

	"github.com/aman-health/practitioner-rank/internal/corpus"
)

var (
	malePronounRe   = regexp.MustCompile(`(?i)\b(he|him|his)\b`)
	femalePronounRe = regexp.MustCompile(`(?i)\b(she|her|hers)\b`)
)

func filterGender(in []corpus.Practitioner, preference string) []corpus.Practitioner {
	out := make([]corpus.Practitioner, 0, len(in))
	for _, p := range in {
		g := resolveGender(p)
		if g == corpus.GenderUnknown || string(g) == preference {
			out = append(out, p)
		}
	}
	return out
}

// resolveGender determines a practitioner's gender using the spec's
// fallback chain: explicit field, then title, then pronoun counting in
// free text, else unknown (included permissively by the caller).
func resolveGender(p corpus.Practitioner) corpus.Gender {
	if p.Gender == corpus.GenderMale || p.Gender == corpus.GenderFemale {
		return p.Gender
	}

	if g, ok := genderFromTitle(p.Title); ok {
		return g
	}

	text := p.Description + " " + p.About + " " + p.ClinicalExpertiseRaw
	maleCount := len(malePronounRe.FindAllString(text, -1))
	femaleCount := len(femalePronounRe.FindAllString(text, -1))

	if maleCount >= 2 && maleCount > femaleCount {
		return corpus.GenderMale
	}
	if femaleCount >= 2 && femaleCount > maleCount {
		return corpus.GenderFemale
	}

	return corpus.GenderUnknown
}

func genderFromTitle(title string) (corpus.Gender, bool) {
	t := strings.ToLower(strings.TrimSpace(title))
	t = strings.TrimSuffix(t, ".")
	switch t {
	case "mr":
		return corpus.GenderMale, true
	case "mrs", "ms", "miss":
		return corpus.GenderFemale, true
	default:
		return corpus.GenderUnknown, false
	}
}
