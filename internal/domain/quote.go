package domain

const (
	// AllCategories is the filter value that selects every quote.
	AllCategories = "all"

	// ServerCategory is assigned to every quote fetched from the remote endpoint.
	ServerCategory = "Server"
)

// Quote is a quotation and the category it is filed under.
// There is no identifier: two quotes are the same quote when their Text matches.
type Quote struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// NewQuote builds a quote after checking both fields are present.
func NewQuote(text, category string) (Quote, error) {
	q := Quote{Text: text, Category: category}
	if err := q.Validate(); err != nil {
		return Quote{}, err
	}

	return q, nil
}

// Validate rejects quotes with an empty text or category.
func (q Quote) Validate() error {
	if q.Text == "" {
		return NewValidationError("text", "is required")
	}

	if q.Category == "" {
		return NewValidationError("category", "is required")
	}

	return nil
}

// SeedQuotes returns the collection used when nothing has been persisted yet.
// A fresh slice is returned on every call.
func SeedQuotes() []Quote {
	return []Quote{
		{Text: "The only limit to our realization of tomorrow is our doubts of today.", Category: "Motivation"},
		{Text: "Life is 10% what happens to us and 90% how we react to it.", Category: "Life"},
		{Text: "Your time is limited, don't waste it living someone else's life.", Category: "Inspiration"},
	}
}
