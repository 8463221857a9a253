// Package tables holds the small immutable lookup tables the ranking
// engine is a pure function of: insurer canonicalization, the
// relevant-volume stopword set, and the query equivalence alias map.
// Loaded once, never mutated.
package tables

// Stopwords is the generic medical/geographic term set filtered out of
// query terms before the "relevant admissions" quality-boost heuristic
// decides whether a procedure is meaningful to the query.
var Stopwords = map[string]bool{
	"near": true, "me": true, "with": true, "that": true, "takes": true,
	"who": true, "for": true, "and": true, "the": true, "a": true, "an": true,
	"in": true, "of": true, "to": true, "is": true, "are": true, "my": true,
	"i": true, "need": true, "looking": true, "find": true, "want": true,
	"doctor": true, "specialist": true, "consultant": true, "clinic": true,
	"hospital": true, "practitioner": true, "gp": true, "private": true,
	"nhs": true, "london": true, "uk": true, "area": true, "local": true,
	"nearby": true, "good": true, "best": true, "top": true, "recommend": true,
	"recommended": true, "please": true, "can": true, "you": true, "help": true,
}

// IsStopword reports whether term is a generic stopword, case-insensitive
// on the caller's side (term is expected already lowercased).
func IsStopword(term string) bool {
	return Stopwords[term]
}

// IsMeaningful reports whether a query term counts toward the "relevant
// admissions" heuristic: length > 3 and not a stopword.
func IsMeaningful(term string) bool {
	return len(term) > 3 && !IsStopword(term)
}
