package corpus

import "context"

// Loader produces the in-memory, ordered practitioner sequence the ranking
// engine scores against. Ingestion and merging of heterogeneous source
// files is a collaborator's concern (out of scope per SPEC_FULL.md §1);
// this interface is the seam the ranking engine depends on instead of a
// concrete file format.
type Loader interface {
	// Load returns the full corpus, read-only after this call returns.
	Load(ctx context.Context) ([]Practitioner, error)
}

// StaticLoader is a Loader backed by an in-memory slice, useful for tests
// and the benchmark CLI where the corpus is already materialized.
type StaticLoader struct {
	Practitioners []Practitioner
}

// Load returns the wrapped slice unchanged.
func (s StaticLoader) Load(ctx context.Context) ([]Practitioner, error) {
	return s.Practitioners, nil
}
