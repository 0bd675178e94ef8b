package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/asinbot/internal/bot"
	"github.com/nao1215/asinbot/internal/config"
	"github.com/nao1215/asinbot/internal/imaging"
	"github.com/nao1215/asinbot/internal/pipeline"
	"github.com/nao1215/asinbot/internal/telegram"
	"github.com/nao1215/asinbot/internal/watchdog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// exitRestartCode is the status used when the watchdog exits for a supervisor.
const exitRestartCode = 1

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Long: `Serve answers Telegram messages containing an ASIN with a price list.

The bot token is read from BOT_TOKEN (a .env file in the working directory is
loaded first). A watchdog restarts the process when the bot stops making
progress for longer than the stale threshold.

Examples:
  # Run with the token from .env
  asinbot serve

  # Let systemd or a container runtime restart the process
  asinbot serve --restart-mode exit

  # Structured logs for a log collector
  asinbot serve --log-json -v

  # Expose the last sign of life for the hosting platform
  asinbot serve --health-addr :8080`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("restart-mode", config.RestartModeExec,
		"How the watchdog restarts the bot: exec (in place) or exit (supervisor)")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")
	cmd.Flags().String("health-addr", "",
		"Serve "+watchdog.HealthPath+" on this address (e.g. :8080); empty disables it")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("restart-mode") {
		if cfg.RestartMode, err = cmd.Flags().GetString("restart-mode"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("health-addr") {
		if cfg.HealthAddr, err = cmd.Flags().GetString("health-addr"); err != nil {
			return err
		}
	}
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}

	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, jsonLogs)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cmd, cfg, logger)
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	stack, err := newLookupStack(cfg, logger)
	if err != nil {
		return err
	}

	api, err := telegram.NewClient(cfg.BotToken, stack.clients,
		telegram.WithBaseURL(cfg.TelegramAPIURL),
		telegram.WithClientLogger(logger),
	)
	if err != nil {
		return err
	}

	me, err := api.GetMe(ctx)
	switch {
	case errors.Is(err, telegram.ErrAPI):
		return fmt.Errorf("bot token rejected: %w", err)
	case err != nil:
		logger.Warn("Bot API not reachable yet", "error", err)
	default:
		logger.Info("authorized", "bot", me.Username)
	}

	liveness := watchdog.NewLiveness(time.Now())
	resolver := pipeline.NewResolver(stack.newPipeline, stack.chat, pipeline.WithResolverLogger(logger))
	photos := imaging.NewProcessor(stack.clients,
		imaging.WithTimeout(cfg.ImageTimeout),
		imaging.WithLogger(logger),
	)
	handler := bot.NewHandler(resolver, api, photos,
		bot.WithStartDelay(cfg.StartDelay),
		bot.WithLiveness(liveness),
		bot.WithRenderer(stack.chat),
		bot.WithLogger(logger),
	)
	poller := telegram.NewPoller(api, handler,
		telegram.WithPollTimeout(cfg.PollTimeout),
		telegram.WithPollerLogger(logger),
	)
	dog := watchdog.New(liveness, newRestarter(cfg.RestartMode),
		watchdog.WithHeartbeatInterval(cfg.HeartbeatInterval),
		watchdog.WithCheckInterval(cfg.CheckInterval),
		watchdog.WithStaleThreshold(cfg.StaleThreshold),
		watchdog.WithProbe(func(ctx context.Context) error {
			_, err := api.GetMe(ctx)
			return err
		}),
		watchdog.WithLogger(logger),
	)

	fmt.Fprintln(cmd.OutOrStdout(), "asinbot is running. Press Ctrl+C to stop.")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dog.Run(ctx)
	})
	g.Go(func() error {
		return poller.Run(ctx)
	})
	if cfg.HealthAddr != "" {
		health := dog.NewHealthServer(cfg.HealthAddr)
		g.Go(func() error {
			return health.Run(ctx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "asinbot stopped.")
	return nil
}

// newRestarter returns the restarter for mode. Validation has already
// rejected unknown modes.
func newRestarter(mode string) watchdog.Restarter {
	if mode == config.RestartModeExit {
		return watchdog.NewExitRestarter(exitRestartCode)
	}
	return watchdog.NewExecRestarter()
}
