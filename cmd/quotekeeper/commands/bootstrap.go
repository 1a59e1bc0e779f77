package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// errOffline is returned by commands that need the remote under --offline.
var errOffline = errors.New("remote quote service disabled by --offline")

// session is what every command works against: the loaded config, the
// logger, the opened slot store and the loaded quote store.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	slots  ports.SlotStore
	repo   *storage.SlotRepository
	store  *app.QuoteStore

	// posts is nil under --offline.
	posts *acl.PostsClient
}

// bootstrap loads and validates the config (failing fast), builds the
// logger writing to logOut, opens storage and loads the collection.
func bootstrap(ctx context.Context, opts *options, logOut io.Writer) (*session, error) {
	cfg, err := config.LoadFrom(opts.configDir, opts.resolveProfile())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, logOut)
	logging.SetDefault(logger)

	s := &session{cfg: cfg, logger: logger}

	if !opts.offline {
		s.posts, err = newPostsClient(cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	s.slots, err = storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	s.repo = storage.NewSlotRepository(s.slots)

	storeCfg := app.QuoteStoreConfig{
		Repository:  s.repo,
		Preferences: s.repo,
		Logger:      logger,
	}

	if s.posts != nil {
		storeCfg.Publisher = s.posts
	}

	s.store = app.NewQuoteStore(storeCfg)

	if err := s.store.Load(ctx); err != nil {
		_ = s.slots.Close()
		return nil, err
	}

	return s, nil
}

func newPostsClient(cfg *config.Config, logger *slog.Logger) (*acl.PostsClient, error) {
	client, err := clients.New(clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		UserAgent:   cfg.App.Name + "/" + cfg.App.Version,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", cfg.Services.Quote.Name, err)
	}

	return acl.NewPostsClient(client, logger), nil
}

// syncService returns the remote merge use case, or errOffline.
func (s *session) syncService() (*app.SyncService, error) {
	if s.posts == nil {
		return nil, errOffline
	}

	return app.NewSyncService(app.SyncServiceConfig{
		Store:  s.store,
		Remote: s.posts,
		Logger: s.logger,
	}), nil
}

// Close releases the slot store.
func (s *session) Close() error {
	return s.slots.Close()
}
