package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// JSONFileLoader loads a corpus from a single JSON file containing an
// array of Practitioner records. This is the concrete Loader `rankctl`
// uses; the multi-source ingestion pipeline that produces that file is
// out of scope (SPEC_FULL.md §6).
type JSONFileLoader struct {
	Path string
}

// Load reads and decodes the JSON file at Path.
func (l JSONFileLoader) Load(_ context.Context) ([]Practitioner, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file %s: %w", l.Path, err)
	}

	var practitioners []Practitioner
	if err := json.Unmarshal(data, &practitioners); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file %s: %w", l.Path, err)
	}
	return practitioners, nil
}
