package ports

import (
	"context"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// RemoteQuotes fetches quote-like records from a remote endpoint.
type RemoteQuotes interface {
	// FetchQuotes returns the remote records already translated to quotes.
	// Returns domain.ErrUnavailable when the endpoint cannot be reached.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)
}

// QuotePublisher announces a newly added quote to a remote endpoint.
type QuotePublisher interface {
	// PublishQuote sends q and returns the identifier the remote assigned.
	PublishQuote(ctx context.Context, q domain.Quote) (string, error)
}
