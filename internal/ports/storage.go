// Package ports defines the interfaces the application layer depends on.
// Adapters implement them; the app package never imports an adapter.
//
// Conventions:
//   - context first on anything that may block
//   - domain types in, domain types out
//   - failures reported with domain errors (ErrNotFound, ErrUnavailable, ...)
package ports

import (
	"context"
	"io"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// Slot names used by the quote keeper.
const (
	// SlotQuotes holds the whole quote collection as a JSON array.
	SlotQuotes = "quotes"

	// SlotSelectedCategory holds the last category filter as plain text.
	SlotSelectedCategory = "selectedCategory"
)

// SlotStore is a key-value store of opaque byte payloads.
// Each key is a persistence slot that is always read and written whole.
type SlotStore interface {
	// Get returns the payload stored under key.
	// Returns domain.ErrNotFound if nothing was ever written there.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the payload stored under key.
	Put(ctx context.Context, key string, value []byte) error

	io.Closer
}

// QuoteRepository loads and saves the quote collection as a single unit.
type QuoteRepository interface {
	// LoadQuotes returns the persisted collection.
	// Returns domain.ErrNotFound if nothing has been saved, and a
	// domain.MalformedDocumentError if the stored payload cannot be decoded.
	LoadQuotes(ctx context.Context) ([]domain.Quote, error)

	// SaveQuotes overwrites the persisted collection.
	SaveQuotes(ctx context.Context, quotes []domain.Quote) error
}

// PreferenceStore remembers the category filter across restarts.
type PreferenceStore interface {
	// SelectedCategory returns the remembered filter.
	// Returns domain.ErrNotFound if none was stored.
	SelectedCategory(ctx context.Context) (string, error)

	// SetSelectedCategory stores the filter.
	SetSelectedCategory(ctx context.Context, category string) error
}
