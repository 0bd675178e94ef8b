package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/asinbot/internal/config"
	"github.com/nao1215/asinbot/internal/model"
	"github.com/nao1215/asinbot/internal/pipeline"
	"github.com/nao1215/asinbot/internal/report"
	"github.com/spf13/cobra"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup [asin...]",
		Short: "Look up prices for one or more ASINs",
		Long: `Lookup resolves each ASIN the same way the bot does and prints the result.

Several ASINs are resolved concurrently (see --batch); results are printed in
argument order.

Examples:
  # Print the chat reply for one product
  asinbot lookup B0DZGHZQ7V

  # Resolve several products, two at a time, as JSON
  asinbot lookup --batch 2 --json B0DZGHZQ7V B0CHX1W1XY

  # Write a Markdown report
  asinbot lookup --markdown -o report.md B0DZGHZQ7V`,
		Args: cobra.ArbitraryArgs,
		RunE: runLookupCmd,
	}

	addConfigFlags(cmd)
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent lookups")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

func runLookupCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	asins, err := parseASINs(args)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, false)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runLookup(ctx, cfg, asins, cmd.OutOrStdout(), logger)
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseASINs validates every argument before any network traffic.
func parseASINs(args []string) ([]model.ASIN, error) {
	if len(args) == 0 {
		return nil, errors.New("no ASINs provided (specify one or more as arguments)")
	}
	asins := make([]model.ASIN, 0, len(args))
	for _, arg := range args {
		asin, err := model.ParseASIN(arg)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", arg, err)
		}
		asins = append(asins, asin)
	}
	return asins, nil
}

func runLookup(ctx context.Context, cfg *config.Config, asins []model.ASIN, stdout io.Writer, logger *slog.Logger) error {
	stack, err := newLookupStack(cfg, logger)
	if err != nil {
		return err
	}

	output := stdout
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}
	writer := newReportWriter(cfg, output, stack.chat)

	bp := pipeline.NewBatchProcessor(stack.newPipeline,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	results, err := bp.ProcessBatch(ctx, asins)

	for _, res := range results {
		if res == nil {
			continue
		}
		if _, werr := writer.Write(res); werr != nil {
			return fmt.Errorf("failed to write report: %w", werr)
		}
	}
	return err
}

// createReportFile creates path and its parent directories with owner-only permissions.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// newReportWriter selects the writer for the requested format.
func newReportWriter(cfg *config.Config, output io.Writer, chat *report.ChatRenderer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(readBuildInfo().Version))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewTextWriter(output, chat)
	}
}
