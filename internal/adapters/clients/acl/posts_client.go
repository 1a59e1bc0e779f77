package acl

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

const postsPath = "/posts"

var (
	_ ports.RemoteQuotes   = (*PostsClient)(nil)
	_ ports.QuotePublisher = (*PostsClient)(nil)
	_ ports.HealthChecker  = (*PostsClient)(nil)
)

// post is the remote record. Only title carries quote text.
type post struct {
	ID     json.Number `json:"id"`
	UserID json.Number `json:"userId"`
	Title  string      `json:"title"`
	Body   string      `json:"body"`
}

// createdPost is the reply to a publish.
type createdPost struct {
	ID json.Number `json:"id"`
}

// PostsClient reads and writes quotes through a JSON posts resource.
type PostsClient struct {
	BaseAdapter

	logger *slog.Logger
}

// NewPostsClient panics if client is nil.
func NewPostsClient(client *clients.Client, logger *slog.Logger) *PostsClient {
	if client == nil {
		panic("PostsClient: client is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostsClient{BaseAdapter: NewBaseAdapter(client), logger: logger}
}

// FetchQuotes implements ports.RemoteQuotes. Every post becomes a quote in
// the Server category, its title taken verbatim. The result is never nil.
func (c *PostsClient) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	body, err := c.Get(ctx, postsPath, "fetch posts")
	if err != nil {
		return nil, err
	}

	posts, err := DecodeResponse[[]post](body, c.ServiceName(), "posts")
	if err != nil {
		return nil, err
	}

	quotes := TranslateSlice(posts, postToQuote)

	c.logger.Log(ctx, logging.LevelTrace, "translated posts",
		slog.Int("received", len(posts)),
		slog.Int("kept", len(quotes)),
	)

	return quotes, nil
}

func postToQuote(p *post) (domain.Quote, bool) {
	return domain.Quote{Text: p.Title, Category: domain.ServerCategory}, true
}

// PublishQuote implements ports.QuotePublisher. The quote is sent as-is and
// the id the remote assigned is returned.
func (c *PostsClient) PublishQuote(ctx context.Context, q domain.Quote) (string, error) {
	body, err := c.PostJSON(ctx, postsPath, q, "publish quote")
	if err != nil {
		return "", err
	}

	created, err := DecodeResponse[createdPost](body, c.ServiceName(), "publish")
	if err != nil {
		return "", err
	}

	return created.ID.String(), nil
}

// Name implements ports.HealthChecker.
func (c *PostsClient) Name() string {
	return c.ServiceName()
}

// Check fails fast while the circuit is open, otherwise fetches one post.
func (c *PostsClient) Check(ctx context.Context) error {
	if c.Client().CircuitState() == clients.StateOpen {
		return domain.NewUnavailableError(c.ServiceName(), "circuit breaker open")
	}

	body, err := c.Get(ctx, postsPath+"/1", "health check")
	if err != nil {
		return err
	}

	return body.Close()
}
