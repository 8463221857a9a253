// Package cmd provides the CLI commands for rankctl.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aman-health/practitioner-rank/internal/logging"
	"github.com/aman-health/practitioner-rank/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the rankctl CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rankctl",
		Short:   "Practitioner ranking engine CLI",
		Long:    `rankctl ranks a corpus of practitioners against a patient query using BM25 Stage A plus structured-intent Stage B rescoring, and builds de-biased candidate pools for benchmarking.`,
		Version: version.Short(),
	}

	cmd.SetVersionTemplate("rankctl version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.practitioner-rank/logs/ (or RANK_DEBUG=1)")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newRankCmd())
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode || debugEnvEnabled() {
		cfg = logging.DebugConfig()
	}
	cfg.WriteToStderr = false

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

func debugEnvEnabled() bool {
	return envIsTrue("RANK_DEBUG")
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
