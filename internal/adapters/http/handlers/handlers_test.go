package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	engine *gin.Engine
	store  *app.QuoteStore
	slots  *memory.Store
}

func newFixture(t *testing.T, initial ...domain.Quote) *fixture {
	t.Helper()

	slots := memory.New()
	repo := storage.NewSlotRepository(slots)

	if initial != nil {
		require.NoError(t, repo.SaveQuotes(context.Background(), initial))
	}

	store := app.NewQuoteStore(app.QuoteStoreConfig{
		Repository:  repo,
		Preferences: repo,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		IntN:        func(int) int { return 0 },
	})
	require.NoError(t, store.Load(context.Background()))

	engine := gin.New()
	NewQuoteHandler(store).RegisterRoutes(engine.Group("/api/v1"))

	return &fixture{engine: engine, store: store, slots: slots}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

var (
	life   = domain.Quote{Text: "Life is what happens.", Category: "Life"}
	work   = domain.Quote{Text: "Ship it.", Category: "Work"}
	life2  = domain.Quote{Text: "Carpe diem.", Category: "Life"}
	sample = []domain.Quote{life, work, life2}
)

func TestList_AllAndFiltered(t *testing.T) {
	f := newFixture(t, sample...)

	w := f.do(t, http.MethodGet, "/api/v1/quotes", "")
	require.Equal(t, http.StatusOK, w.Code)

	all := decode[dto.ListQuotesResponse](t, w)
	assert.Equal(t, domain.AllCategories, all.Category)
	assert.Len(t, all.Quotes, 3)
	assert.Equal(t, 3, all.Page.Total)

	w = f.do(t, http.MethodGet, "/api/v1/quotes?category=Life", "")
	filtered := decode[dto.ListQuotesResponse](t, w)
	assert.Equal(t, []dto.QuoteResponse{dto.NewQuoteResponse(life), dto.NewQuoteResponse(life2)}, filtered.Quotes)
}

func TestList_UsesRememberedCategory(t *testing.T) {
	f := newFixture(t, sample...)
	require.NoError(t, f.store.SelectCategory(context.Background(), "Work"))

	resp := decode[dto.ListQuotesResponse](t, f.do(t, http.MethodGet, "/api/v1/quotes", ""))
	assert.Equal(t, "Work", resp.Category)
	assert.Equal(t, []dto.QuoteResponse{dto.NewQuoteResponse(work)}, resp.Quotes)
}

func TestList_Pagination(t *testing.T) {
	f := newFixture(t, sample...)

	resp := decode[dto.ListQuotesResponse](t, f.do(t, http.MethodGet, "/api/v1/quotes?limit=2&offset=1", ""))
	assert.Len(t, resp.Quotes, 2)
	assert.Equal(t, dto.PageInfo{Total: 3, Offset: 1, Limit: 2, More: false}, resp.Page)

	w := f.do(t, http.MethodGet, "/api/v1/quotes?limit=0&offset=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/quotes?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRandom(t *testing.T) {
	f := newFixture(t, sample...)

	w := f.do(t, http.MethodGet, "/api/v1/quotes/random?category=Work", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.NewQuoteResponse(work), decode[dto.QuoteResponse](t, w))

	w = f.do(t, http.MethodGet, "/api/v1/quotes/random?category=Nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, dto.ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, "no quotes available", resp.Error.Message)
}

func TestCreate(t *testing.T) {
	f := newFixture(t, sample...)

	w := f.do(t, http.MethodPost, "/api/v1/quotes", `{"text":"New one.","category":"Fresh"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, dto.QuoteResponse{Text: "New one.", Category: "Fresh"}, decode[dto.QuoteResponse](t, w))
	assert.Equal(t, 4, f.store.Len())

	raw, err := f.slots.Get(context.Background(), "quotes")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "New one.")
}

func TestCreate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		code  string
		field string
	}{
		{"missing text", `{"category":"Life"}`, dto.ErrorCodeValidation, "text"},
		{"blank category", `{"text":"x","category":"   "}`, dto.ErrorCodeValidation, "category"},
		{"not json", `{"text":`, dto.ErrorCodeBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, sample...)

			w := f.do(t, http.MethodPost, "/api/v1/quotes", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			resp := decode[dto.ErrorResponse](t, w)
			assert.Equal(t, tt.code, resp.Error.Code)

			if tt.field != "" {
				assert.Contains(t, resp.Error.Details, tt.field)
			}

			assert.Equal(t, 3, f.store.Len())
		})
	}
}

func TestCategories(t *testing.T) {
	f := newFixture(t, sample...)

	resp := decode[dto.CategoriesResponse](t, f.do(t, http.MethodGet, "/api/v1/categories", ""))
	assert.Equal(t, []string{domain.AllCategories, "Life", "Work"}, resp.Categories)
	assert.Equal(t, domain.AllCategories, resp.Selected)
}

func TestPreferences(t *testing.T) {
	f := newFixture(t, sample...)

	w := f.do(t, http.MethodPut, "/api/v1/preferences/category", `{"category":"Work"}`)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[dto.CategoryPreference](t, f.do(t, http.MethodGet, "/api/v1/preferences/category", ""))
	assert.Equal(t, "Work", got.Category)

	raw, err := f.slots.Get(context.Background(), "selectedCategory")
	require.NoError(t, err)
	assert.Equal(t, "Work", string(raw))

	w = f.do(t, http.MethodPut, "/api/v1/preferences/category", `{"category":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportImport(t *testing.T) {
	src := newFixture(t, sample...)

	w := src.do(t, http.MethodGet, "/api/v1/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "quotes.json")
	assert.Contains(t, w.Body.String(), "\n  {", "two-space indent")

	dst := newFixture(t, []domain.Quote{}...)
	w = dst.do(t, http.MethodPost, "/api/v1/import", w.Body.String())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[dto.ImportResponse](t, w)
	assert.Equal(t, 3, resp.Imported)
	assert.Equal(t, sample, dst.store.All())
}

func TestImport_Malformed(t *testing.T) {
	f := newFixture(t, sample...)

	w := f.do(t, http.MethodPost, "/api/v1/import", `{"text":"not an array"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeBadRequest, decode[dto.ErrorResponse](t, w).Error.Code)
	assert.Equal(t, sample, f.store.All())
}

// syncFunc adapts a function to app.Syncer.
type syncFunc func(context.Context) (app.SyncReport, error)

func (f syncFunc) Sync(ctx context.Context) (app.SyncReport, error) { return f(ctx) }

func TestSync(t *testing.T) {
	tests := []struct {
		name   string
		syncer syncFunc
		status int
		check  func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "success",
			syncer: func(context.Context) (app.SyncReport, error) {
				return app.SyncReport{Fetched: 100, Added: 98, Total: 101, Duration: 1500 * time.Millisecond}, nil
			},
			status: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, dto.SyncResponse{Fetched: 100, Added: 98, Total: 101, DurationMS: 1500}, decode[dto.SyncResponse](t, w))
			},
		},
		{
			name: "remote down",
			syncer: func(context.Context) (app.SyncReport, error) {
				return app.SyncReport{}, &app.ExecutionError{
					Operation: "sync",
					Step:      app.StepPerform,
					Cause:     domain.NewUnavailableError("posts-service", "connection refused"),
				}
			},
			status: http.StatusServiceUnavailable,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, dto.ErrorCodeUnavailable, decode[dto.ErrorResponse](t, w).Error.Code)
			},
		},
		{
			name: "unexpected",
			syncer: func(context.Context) (app.SyncReport, error) {
				return app.SyncReport{}, errors.New("disk full")
			},
			status: http.StatusInternalServerError,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decode[dto.ErrorResponse](t, w)
				assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
				assert.NotContains(t, resp.Error.Message, "disk full")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			NewSyncHandler(tt.syncer).RegisterRoutes(engine.Group("/api/v1"))

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))

			assert.Equal(t, tt.status, w.Code)
			tt.check(t, w)
		})
	}
}

func TestConstructorsRequireDependencies(t *testing.T) {
	assert.Panics(t, func() { NewQuoteHandler(nil) })
	assert.Panics(t, func() { NewSyncHandler(nil) })
}
