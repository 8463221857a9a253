package tables

import (
	"regexp"
	"strings"
)

// exactAlias maps an exact word-boundary match to its canonical expansion,
// e.g. "svt" -> "supraventricular tachycardia".
var exactAliases = map[string]string{
	"svt":  "supraventricular tachycardia",
	"afib": "atrial fibrillation",
	"mi":   "myocardial infarction",
	"pci":  "percutaneous coronary intervention",
	"cabg": "coronary artery bypass graft",
	"copd": "chronic obstructive pulmonary disease",
	"gord": "gastro-oesophageal reflux disease",
	"ibs":  "irritable bowel syndrome",
	"ibd":  "inflammatory bowel disease",
	"uti":  "urinary tract infection",
	"oa":   "osteoarthritis",
	"ra":   "rheumatoid arthritis",
}

// orthographicPairs are bidirectional spelling variants: either spelling
// expands to the other.
var orthographicPairs = [][2]string{
	{"ischaemic", "ischemic"},
	{"oesophageal", "esophageal"},
	{"paediatric", "pediatric"},
	{"anaesthetic", "anesthetic"},
	{"haematology", "hematology"},
	{"tumour", "tumor"},
	{"fibre", "fiber"},
	{"gynaecology", "gynecology"},
}

// contextGatedAlias expands only when a required context term is also
// present in the query, e.g. "echo" only expands to "echocardiogram" when
// a cardiac context term is present, to avoid expanding unrelated uses.
type contextGatedAlias struct {
	term          string
	expansion     string
	requiresAnyOf []string
}

var contextGatedAliases = []contextGatedAlias{
	{term: "echo", expansion: "echocardiogram", requiresAnyOf: []string{"heart", "cardiac", "cardiology", "valve"}},
	{term: "scope", expansion: "endoscopy", requiresAnyOf: []string{"stomach", "gastric", "bowel", "gut", "gastro"}},
}

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// ExpandEquivalents applies the bounded equivalence alias map to a
// lowercased, already-tokenized query. At most 2 aliases are appended in
// total, matching the equivalence-only normalization cap: exact
// word-boundary terms expand first, then orthographic pairs, then
// context-gated aliases, stopping as soon as 2 have been appended.
func ExpandEquivalents(queryLower string) []string {
	const maxAliases = 2
	tokens := wordRe.FindAllString(queryLower, -1)
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}

	var appended []string

	appendIfRoom := func(s string) bool {
		if len(appended) >= maxAliases {
			return false
		}
		appended = append(appended, s)
		return true
	}

	for _, tok := range tokens {
		if len(appended) >= maxAliases {
			break
		}
		if expansion, ok := exactAliases[tok]; ok {
			if !appendIfRoom(expansion) {
				break
			}
		}
	}

	for _, pair := range orthographicPairs {
		if len(appended) >= maxAliases {
			break
		}
		if tokenSet[pair[0]] {
			appendIfRoom(pair[1])
		} else if tokenSet[pair[1]] {
			appendIfRoom(pair[0])
		}
	}

	for _, cg := range contextGatedAliases {
		if len(appended) >= maxAliases {
			break
		}
		if !tokenSet[cg.term] {
			continue
		}
		for _, req := range cg.requiresAnyOf {
			if tokenSet[req] {
				appendIfRoom(cg.expansion)
				break
			}
		}
	}

	return appended
}

// NormalizeEquivalence appends the bounded alias expansions to the query
// string, space-separated, matching "equivalence-only normalization".
func NormalizeEquivalence(query string) string {
	lower := strings.ToLower(query)
	expansions := ExpandEquivalents(lower)
	if len(expansions) == 0 {
		return query
	}
	return query + " " + strings.Join(expansions, " ")
}
