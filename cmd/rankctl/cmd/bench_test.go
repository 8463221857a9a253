package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeQueriesFile(t *testing.T, dir string, queries []string) string {
	t.Helper()
	path := filepath.Join(dir, "queries.json")
	data, err := json.Marshal(queries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestBenchPoolCmd_RequiresCorpusAndQueries(t *testing.T) {
	// Given: bench pool invoked without --corpus or --queries
	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"bench", "pool"})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed
	err := rootCmd.Execute()

	// Then: it fails naming the missing flags
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--corpus")
}

func TestBenchPoolCmd_BuildsOnePoolEntryPerQuery(t *testing.T) {
	// Given: a corpus and two benchmark queries, LLM disabled via no matching model call needed
	t.Setenv("WORKERS", "2")
	tmpDir := t.TempDir()
	corpusPath := writeCorpusFile(t, tmpDir)
	queriesPath := writeQueriesFile(t, tmpDir, []string{"heart arrhythmia", "skin cancer screening"})

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"bench", "pool", "--corpus", corpusPath, "--queries", queriesPath, "--cache-dir", tmpDir})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed against an unreachable Ollama host, the guarded
	// client's circuit breaker degrades query understanding to its
	// conservative fallback rather than failing the command.
	err := rootCmd.Execute()
	require.NoError(t, err)

	// Then: one pool entry is emitted per query, in order
	var entries []poolEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "heart arrhythmia", entries[0].Query)
	assert.Equal(t, "skin cancer screening", entries[1].Query)
}

func TestBenchPoolCmd_WritesBenchmarkCacheFile(t *testing.T) {
	// Given: a successful bench pool run
	tmpDir := t.TempDir()
	corpusPath := writeCorpusFile(t, tmpDir)
	queriesPath := writeQueriesFile(t, tmpDir, []string{"cardiology follow-up"})

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"bench", "pool", "--corpus", corpusPath, "--queries", queriesPath, "--cache-dir", tmpDir, "--variant", "v2"})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed
	err := rootCmd.Execute()
	require.NoError(t, err)

	// Then: the variant-named cache file exists on disk
	_, statErr := os.Stat(filepath.Join(tmpDir, "benchmark-session-context-cache-v2.json"))
	assert.NoError(t, statErr)
}

func TestBenchEvaluateCmd_EmitsOneEntryPerQueryWithTerminationReason(t *testing.T) {
	// Given: a corpus and a single benchmark query
	t.Setenv("STUDY_TIMEOUT", "5")
	tmpDir := t.TempDir()
	corpusPath := writeCorpusFile(t, tmpDir)
	queriesPath := writeQueriesFile(t, tmpDir, []string{"arrhythmia specialist"})

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"bench", "evaluate", "--corpus", corpusPath, "--queries", queriesPath, "--cache-dir", tmpDir})
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	// When: executed
	err := rootCmd.Execute()
	require.NoError(t, err)

	// Then: one evaluation entry comes back, with a non-empty termination reason
	var entries []evaluationEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].Reason)
}
