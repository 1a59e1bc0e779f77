package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// SyncReport describes one completed sync.
type SyncReport struct {
	Fetched  int           `json:"fetched"`
	Added    int           `json:"added"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"-"`
}

// SyncServiceConfig contains the dependencies of a SyncService.
type SyncServiceConfig struct {
	Store  *QuoteStore
	Remote ports.RemoteQuotes
	Logger *slog.Logger
}

// SyncService pulls remote quotes and merges them into the store.
type SyncService struct {
	store  *QuoteStore
	remote ports.RemoteQuotes
	exec   *Executor
	logger *slog.Logger
}

// NewSyncService wires a SyncService. Store and Remote are required.
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	if cfg.Store == nil || cfg.Remote == nil {
		panic("app: SyncService needs a store and a remote")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SyncService{
		store:  cfg.Store,
		remote: cfg.Remote,
		exec:   NewExecutor(logger),
		logger: logger,
	}
}

var errNilFetch = errors.New("remote returned no collection")

// Sync fetches the remote collection and merges it, local quotes first.
// On any failure the store is left as it was.
func (s *SyncService) Sync(ctx context.Context) (SyncReport, error) {
	start := time.Now()

	op := Operation[struct{}, []domain.Quote, []domain.Quote, SyncReport]{
		Name: "sync_remote_quotes",
		Perform: func(ctx context.Context, _ struct{}) ([]domain.Quote, error) {
			return s.remote.FetchQuotes(ctx)
		},
		Verify: func(_ context.Context, _ struct{}, fetched []domain.Quote) ([]domain.Quote, error) {
			if fetched == nil {
				return nil, errNilFetch
			}

			return fetched, nil
		},
	}

	var merged MergeResult

	op.Archive = func(ctx context.Context, _ struct{}, verified []domain.Quote) error {
		result, err := s.store.Merge(ctx, verified)
		merged = result

		return err
	}

	op.Respond = func(_ context.Context, _ struct{}, verified []domain.Quote) (SyncReport, error) {
		return SyncReport{
			Fetched:  len(verified),
			Added:    merged.Added,
			Total:    merged.Total,
			Duration: time.Since(start),
		}, nil
	}

	report, err := Execute(ctx, s.exec, op, struct{}{})
	if err != nil {
		return SyncReport{}, err
	}

	s.logger.InfoContext(ctx, "remote sync merged",
		slog.Int("fetched", report.Fetched),
		slog.Int("added", report.Added),
		slog.Int("total", report.Total),
	)

	return report, nil
}
