package file

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watch calls onChange whenever another process rewrites the slot file for
// key. Bursts of events within debounce collapse into one call, and writes
// made through this Store are ignored. Watch blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, key string, debounce time.Duration, onChange func(context.Context)) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Renames replace the inode, so watch the directory rather than the file.
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watching %s: %w", s.dir, err)
	}

	logger := s.logger.With(slog.String("slot", key))
	logger.InfoContext(ctx, "watching slot file", slog.String("path", target))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
				continue
			}

			logger.Log(ctx, logging.LevelTrace, "slot file event", slog.String("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}

			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnContext(ctx, "slot watcher error", slog.Any("error", err))

		case <-fire:
			fire = nil

			data, err := s.Get(ctx, key)
			if err != nil {
				logger.WarnContext(ctx, "changed slot unreadable", slog.Any("error", err))
				continue
			}

			if s.ownWrite(key, data) {
				continue
			}

			logger.InfoContext(ctx, "slot changed on disk")
			onChange(ctx)
		}
	}
}
