package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/file"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/platform/telemetry"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

func newServeCommand(opts *options, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the periodic sync",
		Long: `Serve the quote API, the /-/ probes and metrics, and merge the remote
quotes every sync.interval. SIGINT or SIGTERM shuts everything down
gracefully within server.shutdown_timeout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := bootstrap(cmd.Context(), opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()

			return serve(cmd.Context(), s, info, nil)
		},
	}
}

// serve runs the HTTP server, the sync scheduler and the slot watcher until
// ctx is cancelled or one of them fails. A nil ln listens on the configured
// address.
func serve(ctx context.Context, s *session, info BuildInfo, ln net.Listener) error {
	cfg, logger := s.cfg, s.logger

	logger.InfoContext(ctx, "starting quotekeeper",
		slog.String("version", info.Version),
		slog.String("commit", info.Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
		slog.Int("quotes", s.store.Len()),
	)

	tel, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", err))
		}
	}()

	registry := telemetry.NewRegistry()

	health := ports.NewHealthRegistry()
	if err := health.Register(s.repo); err != nil {
		return fmt.Errorf("registering storage health check: %w", err)
	}

	routes := http.RouterConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Timeout:     cfg.Server.RequestTimeout,
		Health: handlers.NewHealthHandler(health,
			handlers.NewBuildInfo(info.Version, info.Commit, info.BuildTime),
			telemetry.Handler(registry)),
		Quotes: handlers.NewQuoteHandler(s.store),
	}

	var scheduler *app.Scheduler

	svc, err := s.syncService()
	if err != nil {
		logger.InfoContext(ctx, "remote sync disabled, /api/v1/sync and the scheduler are not running", slog.Any("reason", err))
	} else {
		if err := health.Register(s.posts); err != nil {
			return fmt.Errorf("registering remote health check: %w", err)
		}

		routes.Sync = handlers.NewSyncHandler(svc)

		if cfg.Sync.Enabled {
			metrics, err := telemetry.NewSyncMetrics(registry)
			if err != nil {
				return fmt.Errorf("registering sync metrics: %w", err)
			}

			scheduler = app.NewScheduler(app.SchedulerConfig{
				Syncer:   svc,
				Interval: cfg.Sync.Interval,
				Timeout:  cfg.Sync.Timeout,
				Size:     s.store.Len,
				Recorder: metrics,
				Logger:   logger,
			})
		}
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), routes)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if ln != nil {
			return server.Serve(gctx, ln)
		}

		return server.Run(gctx)
	})

	if scheduler != nil {
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	if fs, ok := s.slots.(*file.Store); ok && cfg.Storage.File.Watch {
		g.Go(func() error {
			return fs.Watch(gctx, ports.SlotQuotes, file.DefaultDebounce, s.reloadQuotes)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}

// reloadQuotes picks up an external edit of the quotes slot. The store logs
// the reload; a failed one keeps the current quotes.
func (s *session) reloadQuotes(ctx context.Context) {
	if err := s.store.Reload(ctx); err != nil {
		s.logger.WarnContext(ctx, "reload after external edit failed, keeping current quotes", slog.Any("error", err))
	}
}
