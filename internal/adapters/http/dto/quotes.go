package dto

import (
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// QuoteResponse is one quote on the wire.
type QuoteResponse struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// NewQuoteResponse converts q.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Category: q.Category}
}

// CreateQuoteRequest is the body of POST /quotes.
type CreateQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notblank"`
	Category string `json:"category" validate:"required,notblank"`
}

// ListQuotesRequest is the query of GET /quotes.
type ListQuotesRequest struct {
	PageRequest

	// Category defaults to the remembered filter when empty.
	Category string `form:"category"`
}

// RandomQuoteRequest is the query of GET /quotes/random.
type RandomQuoteRequest struct {
	Category string `form:"category"`
}

// ListQuotesResponse is a filtered page of quotes.
type ListQuotesResponse struct {
	Category string          `json:"category"`
	Quotes   []QuoteResponse `json:"quotes"`
	Page     PageInfo        `json:"page"`
}

// NewListQuotesResponse pages quotes and converts them.
func NewListQuotesResponse(category string, quotes []domain.Quote, page PageRequest) ListQuotesResponse {
	window, info := Paginate(quotes, page)

	out := make([]QuoteResponse, len(window))
	for i, q := range window {
		out[i] = NewQuoteResponse(q)
	}

	return ListQuotesResponse{Category: category, Quotes: out, Page: info}
}

// CategoriesResponse lists the filter options, domain.AllCategories first.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

// NewCategoriesResponse prepends the all option to categories.
func NewCategoriesResponse(categories []string, selected string) CategoriesResponse {
	return CategoriesResponse{
		Categories: append([]string{domain.AllCategories}, categories...),
		Selected:   selected,
	}
}

// CategoryPreference is the body of GET and PUT /preferences/category.
type CategoryPreference struct {
	Category string `json:"category" validate:"required,notblank"`
}

// ImportResponse reports how many quotes an import appended.
type ImportResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// SyncResponse reports a completed sync.
type SyncResponse struct {
	Fetched    int   `json:"fetched"`
	Added      int   `json:"added"`
	Total      int   `json:"total"`
	DurationMS int64 `json:"duration_ms"`
}

// NewSyncResponse converts r.
func NewSyncResponse(r app.SyncReport) SyncResponse {
	return SyncResponse{
		Fetched:    r.Fetched,
		Added:      r.Added,
		Total:      r.Total,
		DurationMS: r.Duration.Milliseconds(),
	}
}
