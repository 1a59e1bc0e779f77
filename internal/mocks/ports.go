// Package mocks provides testify mocks for the ports interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

var (
	_ ports.QuoteRepository = (*QuoteRepository)(nil)
	_ ports.PreferenceStore = (*PreferenceStore)(nil)
	_ ports.RemoteQuotes    = (*RemoteQuotes)(nil)
	_ ports.QuotePublisher  = (*QuotePublisher)(nil)
	_ ports.SyncRecorder    = (*SyncRecorder)(nil)
	_ ports.HealthRegistry  = (*HealthRegistry)(nil)
)

// QuoteRepository mocks ports.QuoteRepository.
type QuoteRepository struct {
	mock.Mock
}

func (m *QuoteRepository) LoadQuotes(ctx context.Context) ([]domain.Quote, error) {
	args := m.Called(ctx)

	quotes, _ := args.Get(0).([]domain.Quote)

	return quotes, args.Error(1)
}

func (m *QuoteRepository) SaveQuotes(ctx context.Context, quotes []domain.Quote) error {
	return m.Called(ctx, quotes).Error(0)
}

// PreferenceStore mocks ports.PreferenceStore.
type PreferenceStore struct {
	mock.Mock
}

func (m *PreferenceStore) SelectedCategory(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *PreferenceStore) SetSelectedCategory(ctx context.Context, category string) error {
	return m.Called(ctx, category).Error(0)
}

// RemoteQuotes mocks ports.RemoteQuotes.
type RemoteQuotes struct {
	mock.Mock
}

func (m *RemoteQuotes) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	args := m.Called(ctx)

	quotes, _ := args.Get(0).([]domain.Quote)

	return quotes, args.Error(1)
}

// QuotePublisher mocks ports.QuotePublisher.
type QuotePublisher struct {
	mock.Mock
}

func (m *QuotePublisher) PublishQuote(ctx context.Context, q domain.Quote) (string, error) {
	args := m.Called(ctx, q)
	return args.String(0), args.Error(1)
}

// SyncRecorder mocks ports.SyncRecorder.
type SyncRecorder struct {
	mock.Mock
}

func (m *SyncRecorder) RunFinished(result string) {
	m.Called(result)
}

func (m *SyncRecorder) TickSkipped() {
	m.Called()
}

func (m *SyncRecorder) QuotesStored(n int) {
	m.Called(n)
}

// HealthRegistry mocks ports.HealthRegistry.
type HealthRegistry struct {
	mock.Mock
}

func (m *HealthRegistry) Register(checker ports.HealthChecker) error {
	return m.Called(checker).Error(0)
}

func (m *HealthRegistry) CheckAll(ctx context.Context) *ports.HealthResult {
	result, _ := m.Called(ctx).Get(0).(*ports.HealthResult)
	return result
}
