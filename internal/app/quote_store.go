// Package app holds the use cases: the quote collection and its remote sync.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// MergeResult summarises one Merge.
type MergeResult struct {
	// Added is the number of remote quotes that were new.
	Added int `json:"added"`

	// Total is the collection size afterwards.
	Total int `json:"total"`
}

// QuoteStoreConfig contains the dependencies of a QuoteStore.
type QuoteStoreConfig struct {
	// Repository persists the collection. Required.
	Repository ports.QuoteRepository

	// Preferences remembers the category filter. Optional.
	Preferences ports.PreferenceStore

	// Publisher announces added quotes. Optional.
	Publisher ports.QuotePublisher

	Logger *slog.Logger

	// IntN drives PickRandom. Defaults to math/rand/v2.IntN.
	IntN domain.IntN
}

// QuoteStore owns the in-memory collection and keeps its persisted slot in
// step. All mutations hold the write lock until the slot is written, so the
// slot never lags behind a returned call. Safe for concurrent use.
type QuoteStore struct {
	repo      ports.QuoteRepository
	prefs     ports.PreferenceStore
	publisher ports.QuotePublisher
	logger    *slog.Logger
	intN      domain.IntN

	mu       sync.RWMutex
	quotes   []domain.Quote
	selected string
}

// NewQuoteStore creates an empty store. Call Load before serving reads.
func NewQuoteStore(cfg QuoteStoreConfig) *QuoteStore {
	s := &QuoteStore{
		repo:      cfg.Repository,
		prefs:     cfg.Preferences,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		intN:      cfg.IntN,
		quotes:    []domain.Quote{},
		selected:  domain.AllCategories,
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if s.intN == nil {
		s.intN = rand.IntN
	}

	return s
}

func (s *QuoteStore) log(ctx context.Context) *slog.Logger {
	if logger, ok := logging.Lookup(ctx); ok {
		return logger
	}

	return s.logger
}

// Load replaces the collection with the persisted one. A slot that was
// never written, or that holds a malformed document, yields the seed quotes.
func (s *QuoteStore) Load(ctx context.Context) error {
	quotes, err := s.repo.LoadQuotes(ctx)

	switch {
	case err == nil:
	case domain.IsNotFound(err):
		s.log(ctx).InfoContext(ctx, "no persisted quotes, using seed collection")
		quotes = domain.SeedQuotes()
	case domain.IsMalformedDocument(err):
		s.log(ctx).WarnContext(ctx, "persisted quotes unreadable, using seed collection", slog.Any("error", err))
		quotes = domain.SeedQuotes()
	default:
		return fmt.Errorf("loading quotes: %w", err)
	}

	selected := domain.AllCategories

	if s.prefs != nil {
		switch c, err := s.prefs.SelectedCategory(ctx); {
		case err == nil && c != "":
			selected = c
		case err != nil && !domain.IsNotFound(err):
			s.log(ctx).WarnContext(ctx, "selected category unreadable, showing all", slog.Any("error", err))
		}
	}

	s.mu.Lock()
	s.quotes = quotes
	s.selected = selected
	s.mu.Unlock()

	s.log(ctx).DebugContext(ctx, "quotes loaded", slog.Int("count", len(quotes)), slog.String("selected", selected))

	return nil
}

// Reload re-reads the persisted collection after an external edit. Unlike
// Load it keeps the current collection when the slot is absent or malformed,
// so a half-written file never resets the store to the seeds.
func (s *QuoteStore) Reload(ctx context.Context) error {
	quotes, err := s.repo.LoadQuotes(ctx)
	if err != nil {
		return fmt.Errorf("reloading quotes: %w", err)
	}

	s.mu.Lock()
	s.quotes = quotes
	s.mu.Unlock()

	s.log(ctx).InfoContext(ctx, "quotes reloaded", slog.Int("count", len(quotes)))

	return nil
}

// Add validates, appends and persists a new quote, then publishes it.
// Publishing is best effort: its failure is logged and Add still succeeds.
func (s *QuoteStore) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := domain.NewQuote(text, category)
	if err != nil {
		return domain.Quote{}, err
	}

	s.mu.Lock()
	next := append(slices.Clip(s.quotes), q)

	if err := s.repo.SaveQuotes(ctx, next); err != nil {
		s.mu.Unlock()
		return domain.Quote{}, fmt.Errorf("saving quotes: %w", err)
	}

	s.quotes = next
	s.mu.Unlock()

	s.log(ctx).InfoContext(ctx, "quote added", slog.String("category", q.Category))

	s.publish(ctx, q)

	return q, nil
}

func (s *QuoteStore) publish(ctx context.Context, q domain.Quote) {
	if s.publisher == nil {
		return
	}

	id, err := s.publisher.PublishQuote(ctx, q)
	if err != nil {
		s.log(ctx).WarnContext(ctx, "publishing quote failed", slog.Any("error", err))
		return
	}

	s.log(ctx).InfoContext(ctx, "quote published", slog.String("remote_id", id))
}

// Persist writes the current collection to the slot.
func (s *QuoteStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveQuotes(ctx, s.quotes); err != nil {
		return fmt.Errorf("saving quotes: %w", err)
	}

	return nil
}

// All returns a copy of the collection.
func (s *QuoteStore) All() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.quotes)
}

// Len returns the collection size.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// Categories returns the distinct categories in first-seen order.
func (s *QuoteStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Categories(s.quotes)
}

// Filter returns the quotes in selected, or all of them for domain.AllCategories.
func (s *QuoteStore) Filter(selected string) []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.FilterByCategory(s.quotes, selected)
}

// PickRandom returns a random quote; ok is false when the store is empty.
func (s *QuoteStore) PickRandom() (domain.Quote, bool) {
	return s.PickRandomIn(domain.AllCategories)
}

// PickRandomIn picks among Filter(selected).
func (s *QuoteStore) PickRandomIn(selected string) (domain.Quote, bool) {
	return domain.PickRandom(s.Filter(selected), s.intN)
}

// Import appends items as given and persists. It returns the number appended.
func (s *QuoteStore) Import(ctx context.Context, items []domain.Quote) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	next := append(slices.Clip(s.quotes), items...)

	if err := s.repo.SaveQuotes(ctx, next); err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("saving quotes: %w", err)
	}

	s.quotes = next
	s.mu.Unlock()

	s.log(ctx).InfoContext(ctx, "quotes imported", slog.Int("count", len(items)))

	return len(items), nil
}

// ImportDocument decodes a JSON array of quotes from r and imports it.
// A document that is not a quote array leaves the store untouched and
// returns a domain.MalformedDocumentError.
func (s *QuoteStore) ImportDocument(ctx context.Context, r io.Reader) (int, error) {
	items, err := domain.DecodeDocument(r, "import")
	if err != nil {
		return 0, err
	}

	return s.Import(ctx, items)
}

// ExportDocument writes the collection to w as an indented JSON array.
func (s *QuoteStore) ExportDocument(w io.Writer) error {
	return domain.EncodeDocument(w, s.All())
}

// Merge folds remote quotes into the collection. Quotes are keyed by text
// and the local copy wins a collision. The merge is computed against the
// collection at the time of the call, so quotes added while remote was being
// fetched survive. Nothing is written when the merge changes nothing.
func (s *QuoteStore) Merge(ctx context.Context, remote []domain.Quote) (MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	localOnly := domain.Merge(s.quotes, nil)
	merged := domain.Merge(localOnly, remote)
	result := MergeResult{Added: len(merged) - len(localOnly), Total: len(merged)}

	if result.Added == 0 && len(localOnly) == len(s.quotes) {
		return result, nil
	}

	if err := s.repo.SaveQuotes(ctx, merged); err != nil {
		return MergeResult{}, fmt.Errorf("saving merged quotes: %w", err)
	}

	s.quotes = merged

	return result, nil
}

// SelectedCategory returns the remembered filter, domain.AllCategories by default.
func (s *QuoteStore) SelectedCategory(ctx context.Context) string {
	if s.prefs != nil {
		c, err := s.prefs.SelectedCategory(ctx)
		if err == nil && c != "" {
			return c
		}

		if err != nil && !domain.IsNotFound(err) {
			s.log(ctx).WarnContext(ctx, "selected category unreadable", slog.Any("error", err))
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selected
}

// SelectCategory remembers c as the filter.
func (s *QuoteStore) SelectCategory(ctx context.Context, c string) error {
	if c == "" {
		return domain.NewValidationError("category", "is required")
	}

	if s.prefs != nil {
		if err := s.prefs.SetSelectedCategory(ctx, c); err != nil {
			return fmt.Errorf("saving selected category: %w", err)
		}
	}

	s.mu.Lock()
	s.selected = c
	s.mu.Unlock()

	return nil
}
