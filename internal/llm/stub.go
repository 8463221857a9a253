package llm

import (
	"context"
	"strings"
)

// StubClient is a deterministic Client for tests: it returns a fixed
// response for prompts containing a matching substring, or Default when
// nothing matches. Err, if set, is returned instead (simulating an
// upstream failure so callers' fallback paths can be exercised).
type StubClient struct {
	Responses map[string]string
	Default   string
	Err       error
}

// Classify implements Client.
func (s *StubClient) Classify(ctx context.Context, prompt string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	for substr, resp := range s.Responses {
		if strings.Contains(prompt, substr) {
			return resp, nil
		}
	}
	return s.Default, nil
}
