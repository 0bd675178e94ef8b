package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/asinbot/internal/config"
	"github.com/nao1215/asinbot/internal/crawler"
	"github.com/nao1215/asinbot/internal/currency"
	"github.com/nao1215/asinbot/internal/log"
	"github.com/nao1215/asinbot/internal/netclient"
	"github.com/nao1215/asinbot/internal/pipeline"
	"github.com/nao1215/asinbot/internal/report"
	"github.com/spf13/cobra"
)

// addConfigFlags registers the flags shared by serve and lookup.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .asinbot in current or home directory)")
	cmd.Flags().String("proxy", "",
		"Route all requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().Int("max-attempts", config.DefaultMaxAttempts,
		"Aggregator requests per lookup")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig layers defaults, the config file, .env and the environment,
// then explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; otherwise defaults apply silently.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.Apply(cf); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("proxy") {
		if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-attempts") {
		if cfg.MaxAttempts, err = cmd.Flags().GetInt("max-attempts"); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// setupLogger creates the secret-masking logger.
func setupLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}

// lookupStack holds the components shared by every lookup.
type lookupStack struct {
	clients     *netclient.Factory
	chat        *report.ChatRenderer
	newPipeline func() *pipeline.Pipeline
}

// newLookupStack wires the fetcher, enricher and pipeline factory from cfg.
func newLookupStack(cfg *config.Config, logger *slog.Logger) (*lookupStack, error) {
	clients, err := netclient.NewFactory(
		netclient.WithProxy(cfg.ProxyAddress),
		netclient.WithHeaders(crawler.BrowserHeaders()),
	)
	if err != nil {
		if errors.Is(err, netclient.ErrInvalidProxyAddress) {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
		return nil, err
	}

	regions := cfg.RegionTable()
	parser := crawler.NewPriceParser(regions, currency.NewConverter(regions),
		crawler.WithRetailURL(cfg.RetailURL),
		crawler.WithParserLogger(logger),
	)
	fetcher := crawler.NewFetcher(clients, parser,
		crawler.WithAggregatorURL(cfg.AggregatorURL),
		crawler.WithAttemptTimeout(cfg.AttemptTimeout),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	)
	enricher := crawler.NewEnricher(clients,
		crawler.WithEnrichRetailURL(cfg.RetailURL),
		crawler.WithEnrichTimeout(cfg.EnrichTimeout),
		crawler.WithEnricherLogger(logger),
	)

	newPipeline := func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddSteps(
			pipeline.NewPriceStep(fetcher,
				pipeline.WithMaxAttempts(cfg.MaxAttempts),
				pipeline.WithBackoffBase(cfg.BackoffBase),
				pipeline.WithPriceLogger(logger),
			),
			pipeline.NewEnrichStep(enricher, pipeline.WithEnrichLogger(logger)),
		)
		return p
	}
	logger.Debug("lookup pipeline ready",
		"steps", newPipeline().StepNames(),
		"max_attempts", cfg.MaxAttempts,
		"proxy", clients.ProxyAddress() != "",
	)

	return &lookupStack{
		clients:     clients,
		chat:        report.NewChatRenderer(report.WithSignature(cfg.Signature)),
		newPipeline: newPipeline,
	}, nil
}
