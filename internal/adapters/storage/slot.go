// Package storage persists the quote collection and the category filter in
// named slots of a ports.SlotStore. Backends live in the subpackages.
package storage

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// HealthCheckName is the readiness check name of a SlotRepository.
const HealthCheckName = "storage"

// Pinger is implemented by slot stores that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ ports.QuoteRepository = (*SlotRepository)(nil)
	_ ports.PreferenceStore = (*SlotRepository)(nil)
	_ ports.HealthChecker   = (*SlotRepository)(nil)
)

// SlotRepository stores the collection as a JSON array in the quotes slot
// and the filter as plain text in the selectedCategory slot.
type SlotRepository struct {
	slots ports.SlotStore
}

// NewSlotRepository wraps slots.
func NewSlotRepository(slots ports.SlotStore) *SlotRepository {
	return &SlotRepository{slots: slots}
}

// LoadQuotes implements ports.QuoteRepository.
func (r *SlotRepository) LoadQuotes(ctx context.Context) ([]domain.Quote, error) {
	data, err := r.slots.Get(ctx, ports.SlotQuotes)
	if err != nil {
		return nil, err
	}

	return domain.UnmarshalQuotes(data, "quotes slot")
}

// SaveQuotes implements ports.QuoteRepository.
func (r *SlotRepository) SaveQuotes(ctx context.Context, quotes []domain.Quote) error {
	data, err := domain.MarshalQuotes(quotes)
	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	return r.slots.Put(ctx, ports.SlotQuotes, data)
}

// SelectedCategory implements ports.PreferenceStore. The slot holds the bare
// category name as text.
func (r *SlotRepository) SelectedCategory(ctx context.Context) (string, error) {
	data, err := r.slots.Get(ctx, ports.SlotSelectedCategory)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// SetSelectedCategory implements ports.PreferenceStore.
func (r *SlotRepository) SetSelectedCategory(ctx context.Context, category string) error {
	return r.slots.Put(ctx, ports.SlotSelectedCategory, []byte(category))
}

// Name implements ports.HealthChecker.
func (r *SlotRepository) Name() string {
	return HealthCheckName
}

// Check pings the backend if it can, otherwise reads the quotes slot.
func (r *SlotRepository) Check(ctx context.Context) error {
	if p, ok := r.slots.(Pinger); ok {
		return p.Ping(ctx)
	}

	_, err := r.slots.Get(ctx, ports.SlotQuotes)
	if err != nil && !domain.IsNotFound(err) {
		return err
	}

	return nil
}

// Close closes the underlying slot store.
func (r *SlotRepository) Close() error {
	return r.slots.Close()
}
