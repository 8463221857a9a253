package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-health/practitioner-rank/internal/diagnostics"
)

func writeCorpusFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "corpus.json")
	data := `[
		{"id": "p1", "name": "Dr Alice Chen", "specialty": "Cardiology", "description": "arrhythmia specialist"},
		{"id": "p2", "name": "Dr Bob Singh", "specialty": "Dermatology", "description": "skin cancer screening"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestRankCmd_RequiresCorpusFlag(t *testing.T) {
	// Given: the rank command invoked without --corpus
	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"rank", "--no-llm", "cardiologist"})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed
	err := rootCmd.Execute()

	// Then: it fails with a message naming the missing flag
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--corpus")
}

func TestRankCmd_RequiresQueryArg(t *testing.T) {
	// Given: the rank command invoked without a query argument
	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"rank", "--no-llm"})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed
	err := rootCmd.Execute()

	// Then: cobra reports the missing required arg
	require.Error(t, err)
}

func TestRankCmd_NoLLMTextOutputListsPractitioners(t *testing.T) {
	// Given: a two-practitioner corpus and --no-llm (skip query understanding)
	tmpDir := t.TempDir()
	corpusPath := writeCorpusFile(t, tmpDir)

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"rank", "--corpus", corpusPath, "--no-llm", "heart arrhythmia"})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed
	err := rootCmd.Execute()

	// Then: it succeeds and prints a numbered shortlist
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Dr Alice Chen")
}

func TestRankCmd_JSONFormatEmitsBreakdownsDecodeableAsBreakdownSlice(t *testing.T) {
	// Given: --format json with --no-llm
	tmpDir := t.TempDir()
	corpusPath := writeCorpusFile(t, tmpDir)

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"rank", "--corpus", corpusPath, "--no-llm", "--format", "json", "skin cancer"})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed
	err := rootCmd.Execute()
	require.NoError(t, err)

	// Then: stdout decodes as a []diagnostics.Breakdown
	var breakdowns []diagnostics.Breakdown
	require.NoError(t, json.Unmarshal(buf.Bytes(), &breakdowns))
	assert.NotEmpty(t, breakdowns)
}

func TestRankCmd_TopFlagCapsResultCount(t *testing.T) {
	// Given: --top 1 against a two-practitioner corpus
	tmpDir := t.TempDir()
	corpusPath := writeCorpusFile(t, tmpDir)

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"rank", "--corpus", corpusPath, "--no-llm", "--format", "json", "--top", "1", "cardiology"})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed
	err := rootCmd.Execute()
	require.NoError(t, err)

	// Then: exactly one result is returned
	var breakdowns []diagnostics.Breakdown
	require.NoError(t, json.Unmarshal(buf.Bytes(), &breakdowns))
	assert.Len(t, breakdowns, 1)
}

func TestRankCmd_NHSFlagExcludesNonNHSPractitioners(t *testing.T) {
	// Given: a corpus where only one practitioner is NHS-affiliated
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "corpus.json")
	data := `[
		{"id": "p1", "name": "Dr NHS Only", "specialty": "Cardiology", "nhs_base": "St Thomas'"},
		{"id": "p2", "name": "Dr Private Only", "specialty": "Cardiology"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"rank", "--corpus", path, "--no-llm", "--nhs", "--format", "json", "cardiology"})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed
	err := rootCmd.Execute()
	require.NoError(t, err)

	// Then: the private-only practitioner is filtered out
	var breakdowns []diagnostics.Breakdown
	require.NoError(t, json.Unmarshal(buf.Bytes(), &breakdowns))
	for _, b := range breakdowns {
		assert.NotEqual(t, "p2", b.PractitionerID)
	}
}
