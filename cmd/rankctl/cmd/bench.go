package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/spf13/cobra"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/aman-health/practitioner-rank/internal/pool"
	"github.com/aman-health/practitioner-rank/internal/progressive"
	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
	"github.com/aman-health/practitioner-rank/internal/ranking"
	"github.com/aman-health/practitioner-rank/internal/session"
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Build and label de-biased candidate pools for benchmarking",
		Long: `bench assembles de-biased candidate pools from a fixed corpus and a
set of benchmark queries, then (optionally) labels each candidate with the
progressive controller's external fit-evaluator so the pool can be scored
against a ground truth.

Examples:
  # Build candidate pools for every query in queries.json
  rankctl bench pool --corpus corpus.json --queries queries.json --variant v2

  # Label an existing pool's candidates as excellent/good/ill_fit
  rankctl bench evaluate --corpus corpus.json --queries queries.json --variant v2`,
	}

	cmd.AddCommand(newBenchPoolCmd())
	cmd.AddCommand(newBenchEvaluateCmd())

	return cmd
}

type benchOptions struct {
	corpusPath  string
	queriesPath string
	variant     string
	strategy    string
	cacheDir    string
}

func addBenchFlags(cmd *cobra.Command, opts *benchOptions) {
	cmd.Flags().StringVar(&opts.corpusPath, "corpus", "", "Path to a JSON corpus file (array of practitioner records)")
	cmd.Flags().StringVar(&opts.queriesPath, "queries", "", "Path to a JSON file containing an array of benchmark patient queries")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "Named ranking config variant (e.g. v2)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Pool assembly strategy override (ranking_only, hybrid_bm25, hybrid_random, multi_source)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", ".", "Directory holding the benchmark session-context cache")
}

func loadBenchInputs(ctx context.Context, opts benchOptions) ([]corpus.Practitioner, []string, config.RankingConfig, error) {
	if opts.corpusPath == "" || opts.queriesPath == "" {
		return nil, nil, config.RankingConfig{}, fmt.Errorf("--corpus and --queries are required")
	}

	practitioners, err := corpus.JSONFileLoader{Path: opts.corpusPath}.Load(ctx)
	if err != nil {
		return nil, nil, config.RankingConfig{}, err
	}

	queries, err := loadQueries(opts.queriesPath)
	if err != nil {
		return nil, nil, config.RankingConfig{}, err
	}

	cfg := config.DefaultRankingConfig()
	if opts.variant != "" {
		cfg = config.Variant(opts.variant)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, config.RankingConfig{}, err
	}

	return practitioners, queries, cfg, nil
}

func loadQueries(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queries file %s: %w", path, err)
	}
	var queries []string
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("failed to parse queries file %s: %w", path, err)
	}
	return queries, nil
}

func resolveStrategy(opts benchOptions) pool.Strategy {
	if opts.strategy != "" {
		return pool.Strategy(opts.strategy)
	}
	return pool.StrategyFromEnv()
}

type poolEntry struct {
	Query      string           `json:"query"`
	VariantKey string           `json:"variant_key"`
	Candidates []pool.Candidate `json:"candidates"`
}

func newBenchPoolCmd() *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Assemble a de-biased candidate pool per benchmark query",
		Long: `pool runs the §4.1-4.4 ranking pipeline plus BM25-only scoring once
per query, then assembles a de-biased candidate pool using the configured
strategy (teacher-style, to avoid always benchmarking against the same
practitioners the production ranker already favors).

Each query's resolved session context is cached under --cache-dir so a
re-run with the same variant and queries skips repeat LLM calls.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchPool(cmd, opts)
		},
	}

	addBenchFlags(cmd, &opts)
	return cmd
}

func runBenchPool(cmd *cobra.Command, opts benchOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	practitioners, queries, cfg, err := loadBenchInputs(ctx, opts)
	if err != nil {
		return err
	}

	if err := session.ValidateVariantName(variantOrDefault(opts.variant)); err != nil {
		return err
	}
	cachePath := session.CachePath(opts.cacheDir, variantOrDefault(opts.variant))
	cache, err := session.LoadBenchmarkCache(cachePath)
	if err != nil {
		return err
	}

	strategy := resolveStrategy(opts)
	builder := pool.Builder{Corpus: practitioners, Config: cfg, RNG: rand.New(rand.NewSource(1))}

	entries := make([]poolEntry, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workersFromEnv())

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			sessionCtx, err := resolveBenchSession(gctx, q, opts, cache)
			if err != nil {
				return err
			}

			rq := ranking.Query{TwoStage: true, Session: &sessionCtx}
			candidates := pool.Build(builder, rq, sessionCtx, strategy)
			entries[i] = poolEntry{Query: q, VariantKey: session.Key(q), Candidates: candidates}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := cache.Save(); err != nil {
		return err
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
}

func resolveBenchSession(ctx context.Context, query string, opts benchOptions, cache *session.BenchmarkCache) (queryunderstanding.SessionContext, error) {
	key := session.Key(query)
	if cached, ok := cache.Get(key); ok {
		return cached, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, trialTimeoutFromEnv())
	defer cancel()

	sessionCtx, err := queryunderstanding.Understand(timeoutCtx, newLLMClient(), queryunderstanding.Request{UserQuery: query})
	if err != nil {
		return queryunderstanding.SessionContext{}, err
	}
	cache.Put(key, sessionCtx)
	return sessionCtx, nil
}

func variantOrDefault(variant string) string {
	if variant == "" {
		return "default"
	}
	return variant
}

type evaluationEntry struct {
	Query   string               `json:"query"`
	Results []progressive.Result `json:"results"`
	Reason  string               `json:"termination_reason"`
}

func newBenchEvaluateCmd() *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the progressive controller over each query and label candidates",
		Long: `evaluate runs the bounded V6 deepening controller (§4.5) once per
benchmark query, calling the external fit-evaluator LLM on each newly-seen
candidate and printing the resulting excellent/good/ill_fit shortlist.

Intended to be run after "bench pool" has warmed the session-context
cache for the same --variant and --queries.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchEvaluate(cmd, opts)
		},
	}

	addBenchFlags(cmd, &opts)
	return cmd
}

func runBenchEvaluate(cmd *cobra.Command, opts benchOptions) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), studyTimeoutFromEnv())
	defer cancel()

	practitioners, queries, cfg, err := loadBenchInputs(ctx, opts)
	if err != nil {
		return err
	}

	cachePath := session.CachePath(opts.cacheDir, variantOrDefault(opts.variant))
	cache, err := session.LoadBenchmarkCache(cachePath)
	if err != nil {
		return err
	}

	entries := make([]evaluationEntry, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workersFromEnv())

	evaluator := progressive.LLMFitEvaluator{Client: newLLMClient()}
	params := progressive.DefaultParams()

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			sessionCtx, err := resolveBenchSession(gctx, q, opts, cache)
			if err != nil {
				return err
			}

			results, reason := progressive.Run(gctx, progressive.SlicePool(practitioners), sessionCtx, cfg, evaluator, params)
			entries[i] = evaluationEntry{Query: q, Results: results, Reason: reason}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := cache.Save(); err != nil {
		return err
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
}
