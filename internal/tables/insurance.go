package tables

import "strings"

// insuranceAliases maps a lowercase insurer variant name to its canonical
// name. Populated with the common UK private-medical-insurance variants;
// loaded once at startup, read-only thereafter.
var insuranceAliases = map[string]string{
	"bupa":                 "Bupa",
	"bupa uk":              "Bupa",
	"bupa international":   "Bupa",
	"axa":                  "AXA Health",
	"axa ppp":              "AXA Health",
	"axa health":           "AXA Health",
	"axa ppp healthcare":   "AXA Health",
	"vitality":             "Vitality Health",
	"vitality health":      "Vitality Health",
	"vitalityhealth":       "Vitality Health",
	"aviva":                "Aviva",
	"aviva health":         "Aviva",
	"cigna":                "Cigna",
	"cignaglobal":          "Cigna",
	"cigna global":         "Cigna",
	"allianz":              "Allianz Care",
	"allianz care":         "Allianz Care",
	"allianzworldwidecare": "Allianz Care",
	"wpa":                  "WPA",
	"western provident":    "WPA",
	"simplyhealth":         "Simplyhealth",
	"simply health":        "Simplyhealth",
	"freedom health":       "Freedom Health Insurance",
	"national friendly":    "National Friendly",
}

// CanonicalInsurer returns the canonical name for a raw insurer string,
// matched case-insensitively. Unknown variants are returned trimmed but
// otherwise unchanged: canonicalization never fails, it degrades to
// identity.
func CanonicalInsurer(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := insuranceAliases[key]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// InsuranceMatches reports whether a practitioner's canonicalized insurer
// name matches the requested insurer, case-insensitive with substring
// match allowed in either direction.
func InsuranceMatches(practitionerCanonical, requested string) bool {
	a := strings.ToLower(CanonicalInsurer(practitionerCanonical))
	b := strings.ToLower(CanonicalInsurer(requested))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
