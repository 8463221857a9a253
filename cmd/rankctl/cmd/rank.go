package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aman-health/practitioner-rank/internal/config"
	"github.com/aman-health/practitioner-rank/internal/corpus"
	"github.com/aman-health/practitioner-rank/internal/diagnostics"
	"github.com/aman-health/practitioner-rank/internal/filters"
	"github.com/aman-health/practitioner-rank/internal/llm"
	"github.com/aman-health/practitioner-rank/internal/progressive"
	"github.com/aman-health/practitioner-rank/internal/queryunderstanding"
	"github.com/aman-health/practitioner-rank/internal/ranking"
)

type rankOptions struct {
	corpusPath  string
	variant     string
	location    string
	insurance   string
	nhs         bool
	gender      string
	topN        int
	progressive bool
	explain     bool
	format      string
	noLLM       bool
}

func newRankCmd() *cobra.Command {
	var opts rankOptions

	cmd := &cobra.Command{
		Use:   "rank <query>",
		Short: "Rank a corpus of practitioners against a patient query",
		Long: `rank applies the hard-filter pipeline, then BM25 Stage A plus
structured-intent Stage B rescoring (or, with --progressive, the bounded
V6 deepening controller) and prints the resulting shortlist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.corpusPath, "corpus", "", "Path to a JSON corpus file (array of practitioner records)")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "Named ranking config variant (e.g. v2)")
	cmd.Flags().StringVar(&opts.location, "postcode", "", "Patient postcode, enables proximity boost")
	cmd.Flags().StringVar(&opts.insurance, "insurance", "", "Required insurance provider")
	cmd.Flags().BoolVar(&opts.nhs, "nhs", false, "Restrict to NHS-affiliated practitioners")
	cmd.Flags().StringVar(&opts.gender, "gender", "", "Preferred practitioner gender: male, female")
	cmd.Flags().IntVar(&opts.topN, "top", 10, "Number of results to print")
	cmd.Flags().BoolVar(&opts.progressive, "progressive", false, "Use the V6 progressive-deepening controller instead of a single Stage A/B pass")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Print the per-candidate score breakdown table")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.noLLM, "no-llm", false, "Skip query understanding LLM calls and use the conservative fallback directly")

	return cmd
}

func runRank(cmd *cobra.Command, query string, opts rankOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.corpusPath == "" {
		return fmt.Errorf("--corpus is required")
	}

	practitioners, err := corpus.JSONFileLoader{Path: opts.corpusPath}.Load(ctx)
	if err != nil {
		return err
	}

	cfg := config.Variant(opts.variant)
	if opts.variant == "" {
		cfg = config.DefaultRankingConfig()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	req := filters.Request{
		NHSMode:   opts.nhs,
		Insurance: opts.insurance,
		Gender:    opts.gender,
		Location:  filters.LocationQuery{Postcode: opts.location},
	}
	filtered, err := filters.Apply(ctx, practitioners, req, filters.NoopLocationFilter{})
	if err != nil {
		return err
	}

	session, err := resolveSession(ctx, query, opts)
	if err != nil {
		return err
	}

	q := ranking.Query{
		TwoStage:   true,
		Session:    &session,
		IsPostcode: opts.location != "",
	}

	requestID := requestIDFor()

	var breakdowns []diagnostics.Breakdown
	var ranked []corpus.Practitioner
	var terminationReason string

	if opts.progressive {
		params := progressive.DefaultParams()
		params.TargetShortlistK = opts.topN
		evaluator := progressive.LLMFitEvaluator{Client: newLLMClient()}

		results, reason := progressive.Run(ctx, progressive.SlicePool(filtered), session, cfg, evaluator, params)
		terminationReason = reason
		for i, r := range results {
			ranked = append(ranked, r.Practitioner)
			breakdowns = append(breakdowns, diagnostics.Breakdown{
				RequestID:        requestID,
				Rank:             i + 1,
				PractitionerID:   r.Practitioner.ID,
				PractitionerName: r.Practitioner.Name,
				Score:            r.Score,
			})
		}
	} else {
		stageA := ranking.Rank(filtered, q, cfg, nil, cfg.StageATopN)
		rescored := ranking.Rescore(stageA, session, cfg)
		if opts.topN > 0 && opts.topN < len(rescored) {
			rescored = rescored[:opts.topN]
		}
		for _, r := range rescored {
			ranked = append(ranked, r.Practitioner)
			breakdowns = append(breakdowns, diagnostics.FromRescored(requestID, r))
		}
	}

	for _, b := range breakdowns {
		b.LogDebug(slog.Default())
	}

	if opts.format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(breakdowns)
	}

	if opts.explain {
		diagnostics.RenderTable(cmd.OutOrStdout(), breakdowns, diagnostics.ResolveStyles(cmd.OutOrStdout()))
	} else {
		for i, p := range ranked {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (%s)\n", i+1, p.Name, p.Specialty)
		}
	}
	if terminationReason != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "terminated: %s\n", terminationReason)
	}
	return nil
}

func resolveSession(ctx context.Context, query string, opts rankOptions) (queryunderstanding.SessionContext, error) {
	if opts.noLLM {
		return queryunderstanding.SessionContext{QPatient: query, QPatientOriginal: query}, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, trialTimeoutFromEnv())
	defer cancel()

	return queryunderstanding.Understand(timeoutCtx, newLLMClient(), queryunderstanding.Request{UserQuery: query})
}

func newLLMClient() llm.Client {
	inner := llm.NewOllamaClient(llm.WithModel(llmModelFromEnv()), llm.WithHTTPTimeout(trialTimeoutFromEnv()))
	return llm.NewGuardedClient(inner, "query_understanding")
}

// requestIDFor generates a per-request id for diagnostics/log
// correlation, per the teacher pack's uuid convention.
func requestIDFor() string {
	return uuid.New().String()
}
