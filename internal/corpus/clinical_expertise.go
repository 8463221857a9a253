package corpus

import "strings"

// segmentPrefixes maps the recognized structured-segment labels (matched
// case-insensitively) to the bag they populate.
var segmentPrefixes = []struct {
	prefix string
	bag    func(*ClinicalExpertise) *[]string
}{
	{"procedure:", func(c *ClinicalExpertise) *[]string { return &c.Procedures }},
	{"procedures:", func(c *ClinicalExpertise) *[]string { return &c.Procedures }},
	{"condition:", func(c *ClinicalExpertise) *[]string { return &c.Conditions }},
	{"conditions:", func(c *ClinicalExpertise) *[]string { return &c.Conditions }},
	{"clinical interests:", func(c *ClinicalExpertise) *[]string { return &c.ClinicalInterests }},
	{"clinical interest:", func(c *ClinicalExpertise) *[]string { return &c.ClinicalInterests }},
}

// ParseClinicalExpertise parses a practitioner's raw clinical_expertise
// text. A structured blob is semicolon-separated segments of the form
// "Procedure: X; Condition: Y; Clinical Interests: Z"; any other text is a
// plain comma-separated interest list and is kept whole.
func ParseClinicalExpertise(raw string) ClinicalExpertise {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ClinicalExpertise{}
	}

	segments := strings.Split(raw, ";")
	result := ClinicalExpertise{}
	matchedAny := false

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		lower := strings.ToLower(seg)
		matched := false
		for _, p := range segmentPrefixes {
			if strings.HasPrefix(lower, p.prefix) {
				value := strings.TrimSpace(seg[len(p.prefix):])
				if value != "" {
					bag := p.bag(&result)
					*bag = append(*bag, splitCommaList(value)...)
				}
				matched = true
				matchedAny = true
				break
			}
		}
		if !matched && len(segments) == 1 {
			// Single unlabeled segment: not structured, fall through below.
			continue
		}
	}

	if matchedAny {
		result.Structured = true
		return result
	}

	return ClinicalExpertise{Raw: raw}
}

// splitCommaList splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
