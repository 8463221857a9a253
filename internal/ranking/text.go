// Package ranking implements the two-stage retrieval engine: a BM25 Stage
// A over a per-practitioner weighted text blob, and an additive Stage B
// rescoring pass driven by structured query intent.
package ranking

import (
	"strings"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/corpus"
)

// weightedField is one (text, weight) pair contributing to a blob.
type weightedField struct {
	text   string
	weight float64
}

// buildWeightedText concatenates each searchable field repeated according
// to its field weight. Weights > 1 are rounded to an integer repeat count;
// fractional weights (<=1) appear once. Parsed clinical_expertise bags
// contribute separately when detected (procedures x3, conditions x3,
// clinical_interests x2); otherwise the raw string is used x3. Empty
// fields are skipped.
func buildWeightedText(p corpus.Practitioner, weights config.FieldWeights) string {
	var b strings.Builder

	fields := []weightedField{
		{p.Specialty, weights.Specialty},
		{p.SpecialtyDescription, weights.SpecialtyDescription},
		{p.Description, weights.Description},
		{p.About, weights.About},
		{p.Name, weights.Name},
		{p.ProfessionalMemberships, weights.Memberships},
		{p.AddressLocality, weights.AddressLocality},
		{p.Title, weights.Title},
	}
	for _, f := range fields {
		appendRepeated(&b, f.text, f.weight)
	}

	appendProcedureGroups(&b, p.ProcedureGroups, weights.ProcedureGroups)
	appendInsuranceProviders(&b, p.InsuranceProviders, weights.InsuranceProviders)
	appendClinicalExpertise(&b, p)

	return b.String()
}

func appendRepeated(b *strings.Builder, text string, weight float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	repeats := repeatCount(weight)
	for i := 0; i < repeats; i++ {
		b.WriteString(text)
		b.WriteString(" ")
	}
}

// repeatCount rounds weight to an integer repeat count for weights > 1;
// fraction-weighted fields (<=1) still appear once as long as weight > 0.
func repeatCount(weight float64) int {
	if weight <= 0 {
		return 0
	}
	if weight <= 1 {
		return 1
	}
	return int(weight + 0.5)
}

func appendProcedureGroups(b *strings.Builder, groups []corpus.ProcedureGroup, weight float64) {
	if len(groups) == 0 {
		return
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	appendRepeated(b, strings.Join(names, " "), weight)
}

func appendInsuranceProviders(b *strings.Builder, providers []corpus.InsuranceProvider, weight float64) {
	if len(providers) == 0 {
		return
	}
	names := make([]string, 0, len(providers))
	for _, ip := range providers {
		if ip.CanonicalName != "" {
			names = append(names, ip.CanonicalName)
		}
	}
	appendRepeated(b, strings.Join(names, " "), weight)
}

// appendClinicalExpertise handles the bag-special-case: parsed bags
// contribute separately (procedures x3, conditions x3, clinical_interests
// x2); otherwise the raw string is used x3.
func appendClinicalExpertise(b *strings.Builder, p corpus.Practitioner) {
	ce := p.ClinicalExpertise()
	if !ce.Structured {
		appendRepeated(b, ce.Raw, 3)
		return
	}
	appendRepeated(b, strings.Join(ce.Procedures, " "), 3)
	appendRepeated(b, strings.Join(ce.Conditions, " "), 3)
	appendRepeated(b, strings.Join(ce.ClinicalInterests, " "), 2)
}

// twoAndThreeWordPhrases returns every contiguous 2- and 3-word phrase
// from a token sequence, used by the exact-phrase bonus.
func twoAndThreeWordPhrases(tokens []string) []string {
	var phrases []string
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			phrases = append(phrases, strings.Join(tokens[i:i+n], " "))
		}
	}
	return phrases
}
