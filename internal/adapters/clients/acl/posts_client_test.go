package acl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
)

func newPostsClient(t *testing.T, handler http.HandlerFunc) *PostsClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := clients.New(clients.Config{
		BaseURL:     srv.URL,
		ServiceName: "posts-service",
		Timeout:     2 * time.Second,
		Retry:       config.RetryConfig{MaxAttempts: 1},
		Circuit:     config.CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Minute, HalfOpenLimit: 1},
	})
	require.NoError(t, err)

	return NewPostsClient(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewPostsClient_RequiresClient(t *testing.T) {
	assert.Panics(t, func() { NewPostsClient(nil, nil) })
}

func TestFetchQuotes_TranslatesTitles(t *testing.T) {
	c := newPostsClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"userId":1,"id":1,"title":"sunt aut facere","body":"quia"},
			{"userId":1,"id":2,"title":"   ","body":"blank"},
			{"userId":1,"id":3,"title":" qui est esse ","body":"est"}
		]`)
	})

	quotes, err := c.FetchQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Quote{
		{Text: "sunt aut facere", Category: domain.ServerCategory},
		{Text: "   ", Category: domain.ServerCategory},
		{Text: " qui est esse ", Category: domain.ServerCategory},
	}, quotes, "titles are kept exactly as sent")
}

func TestFetchQuotes_EmptyListIsNotNil(t *testing.T) {
	c := newPostsClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	quotes, err := c.FetchQuotes(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, quotes)
	assert.Empty(t, quotes)
}

func TestFetchQuotes_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"server error", http.StatusInternalServerError, `{}`, domain.IsUnavailable},
		{"not found", http.StatusNotFound, `{}`, domain.IsNotFound},
		{"not an array", http.StatusOK, `{"id":1}`, domain.IsUnavailable},
		{"html error page", http.StatusOK, `<html>gateway error page</html>`, domain.IsUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newPostsClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.FetchQuotes(context.Background())
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
			assert.False(t, domain.IsValidation(err), "remote failures are never the caller's bad input")
		})
	}
}

func TestPublishQuote(t *testing.T) {
	c := newPostsClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/posts", r.URL.Path)

		var q domain.Quote
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, domain.Quote{Text: "Stay hungry.", Category: "Life"}, q)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"text":"Stay hungry.","category":"Life","id":101}`)
	})

	id, err := c.PublishQuote(context.Background(), domain.Quote{Text: "Stay hungry.", Category: "Life"})
	require.NoError(t, err)
	assert.Equal(t, "101", id)
}

func TestCheck(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	c := newPostsClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/1", r.URL.Path)

		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		_, _ = io.WriteString(w, `{"id":1}`)
	})

	assert.Equal(t, "posts-service", c.Name())
	require.NoError(t, c.Check(context.Background()))

	healthy.Store(false)
	for range 2 {
		assert.True(t, domain.IsUnavailable(c.Check(context.Background())))
	}

	assert.Equal(t, clients.StateOpen, c.Client().CircuitState())

	err := c.Check(context.Background())
	assert.ErrorContains(t, err, "circuit breaker open")
}
