package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// Defaults used when SchedulerConfig leaves a duration unset.
const (
	DefaultSyncInterval = 60 * time.Second
	DefaultSyncTimeout  = 30 * time.Second
)

// Syncer runs one sync.
type Syncer interface {
	Sync(ctx context.Context) (SyncReport, error)
}

// SchedulerConfig contains the dependencies of a Scheduler.
type SchedulerConfig struct {
	Syncer Syncer

	// Interval between run starts.
	Interval time.Duration

	// Timeout bounds each run.
	Timeout time.Duration

	// Size reports the collection size after each run. Optional.
	Size func() int

	Recorder ports.SyncRecorder
	Logger   *slog.Logger
}

// Scheduler runs a Syncer once at start and then on every tick.
// At most one run is in flight: a tick that fires while the previous run is
// still going is skipped and counted, never queued.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	timeout  time.Duration
	size     func() int
	recorder ports.SyncRecorder
	logger   *slog.Logger

	running atomic.Bool
}

// NewScheduler creates a scheduler. It panics without a Syncer.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Syncer == nil {
		panic("app: scheduler needs a syncer")
	}

	s := &Scheduler{
		syncer:   cfg.Syncer,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		size:     cfg.Size,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
	}

	if s.interval <= 0 {
		s.interval = DefaultSyncInterval
	}

	if s.timeout <= 0 {
		s.timeout = DefaultSyncTimeout
	}

	if s.recorder == nil {
		s.recorder = ports.NopSyncRecorder{}
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Run blocks until ctx is cancelled, then waits for the in-flight run to
// return. Run failures are logged and counted; they never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	s.logger.InfoContext(ctx, "sync scheduler started", slog.Duration("interval", s.interval))

	s.trigger(ctx, &wg)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "sync scheduler stopping")
			return nil
		case <-ticker.C:
			s.trigger(ctx, &wg)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context, wg *sync.WaitGroup) {
	if !s.running.CompareAndSwap(false, true) {
		s.recorder.TickSkipped()
		s.logger.DebugContext(ctx, "sync still running, tick skipped")

		return
	}

	wg.Add(1)

	go func() {
		defer wg.Done()
		defer s.running.Store(false)

		s.runOnce(ctx)
	}()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx = logging.WithContext(ctx, s.logger.With(slog.String("sync_run", uuid.NewString())))

	_, err := s.syncer.Sync(ctx)
	if err != nil {
		s.recorder.RunFinished(ports.SyncResultFailure)
		logging.FromContext(ctx).WarnContext(ctx, "remote sync failed", slog.Any("error", err))
	} else {
		s.recorder.RunFinished(ports.SyncResultSuccess)
	}

	if s.size != nil {
		s.recorder.QuotesStored(s.size())
	}
}
