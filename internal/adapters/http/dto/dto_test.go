package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewErrorResponse(t *testing.T) {
	got := NewErrorResponse(ErrorCodeNotFound, "no quotes available")

	assert.Equal(t, &ErrorResponse{Error: ErrorDetail{Code: ErrorCodeNotFound, Message: "no quotes available"}}, got)
}

func TestWithTraceID(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeInternal, "boom").WithTraceID("")
	assert.Empty(t, resp.TraceID)

	resp.WithTraceID("4bf92f3577b34da6a3ce929d0e0e4736")
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", resp.TraceID)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[string]int{
		ErrorCodeNotFound:        http.StatusNotFound,
		ErrorCodeValidation:      http.StatusBadRequest,
		ErrorCodeBadRequest:      http.StatusBadRequest,
		ErrorCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
		ErrorCodeUnavailable:     http.StatusServiceUnavailable,
		ErrorCodeTimeout:         http.StatusGatewayTimeout,
		ErrorCodeInternal:        http.StatusInternalServerError,
		"SOMETHING_ELSE":         http.StatusInternalServerError,
	}

	for code, want := range tests {
		t.Run(code, func(t *testing.T) {
			assert.Equal(t, want, HTTPStatusFromCode(code))
		})
	}
}

func TestValidate_CreateQuoteRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        CreateQuoteRequest
		wantFields map[string]string
	}{
		{name: "valid", req: CreateQuoteRequest{Text: "Ship it.", Category: "Work"}},
		{
			name:       "missing both",
			req:        CreateQuoteRequest{},
			wantFields: map[string]string{"text": "this field is required", "category": "this field is required"},
		},
		{
			name:       "whitespace text",
			req:        CreateQuoteRequest{Text: " \t", Category: "Work"},
			wantFields: map[string]string{"text": "must not be blank"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)

			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.wantFields, ValidationErrors(err))
		})
	}
}

func TestValidate_PageRequest(t *testing.T) {
	assert.NoError(t, Validate(PageRequest{}))
	assert.NoError(t, Validate(PageRequest{Limit: MaxLimit, Offset: 10}))

	err := Validate(PageRequest{Limit: MaxLimit + 1})
	assert.Equal(t, map[string]string{"limit": "must be at most 500"}, ValidationErrors(err))

	err = Validate(PageRequest{Offset: -1})
	assert.Equal(t, map[string]string{"offset": "must be at least 0"}, ValidationErrors(err))
}

func TestValidationErrors_NotValidation(t *testing.T) {
	assert.Empty(t, ValidationErrors(ErrBinding))
	assert.False(t, IsValidationError(ErrBinding))
}

func newContext(method, target, body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	return c
}

func TestBindAndValidate(t *testing.T) {
	var req CreateQuoteRequest
	require.NoError(t, BindAndValidate(newContext(http.MethodPost, "/", `{"text":"a","category":"b"}`), &req))
	assert.Equal(t, CreateQuoteRequest{Text: "a", Category: "b"}, req)

	err := BindAndValidate(newContext(http.MethodPost, "/", `{"text":`), &CreateQuoteRequest{})
	assert.ErrorIs(t, err, ErrBinding)
	assert.False(t, IsValidationError(err))

	err = BindAndValidate(newContext(http.MethodPost, "/", `{"text":"a"}`), &CreateQuoteRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBindQueryAndValidate(t *testing.T) {
	var req ListQuotesRequest
	require.NoError(t, BindQueryAndValidate(newContext(http.MethodGet, "/?category=Life&limit=5&offset=2", ""), &req))
	assert.Equal(t, ListQuotesRequest{PageRequest: PageRequest{Limit: 5, Offset: 2}, Category: "Life"}, req)

	err := BindQueryAndValidate(newContext(http.MethodGet, "/?limit=many", ""), &ListQuotesRequest{})
	assert.ErrorIs(t, err, ErrBinding)
}

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name     string
		req      PageRequest
		want     []int
		wantInfo PageInfo
	}{
		{
			name:     "defaults",
			req:      PageRequest{},
			want:     items,
			wantInfo: PageInfo{Total: 5, Offset: 0, Limit: DefaultLimit},
		},
		{
			name:     "first page",
			req:      PageRequest{Limit: 2},
			want:     []int{0, 1},
			wantInfo: PageInfo{Total: 5, Offset: 0, Limit: 2, More: true},
		},
		{
			name:     "last page",
			req:      PageRequest{Limit: 2, Offset: 4},
			want:     []int{4},
			wantInfo: PageInfo{Total: 5, Offset: 4, Limit: 2},
		},
		{
			name:     "past the end",
			req:      PageRequest{Limit: 2, Offset: 9},
			want:     []int{},
			wantInfo: PageInfo{Total: 5, Offset: 9, Limit: 2},
		},
		{
			name:     "limit clamped",
			req:      PageRequest{Limit: MaxLimit * 2},
			want:     items,
			wantInfo: PageInfo{Total: 5, Offset: 0, Limit: MaxLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, info := Paginate(items, tt.req)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantInfo, info)
		})
	}
}

func TestNewListQuotesResponse(t *testing.T) {
	quotes := []domain.Quote{
		{Text: "a", Category: "Life"},
		{Text: "b", Category: "Life"},
	}

	got := NewListQuotesResponse("Life", quotes, PageRequest{Limit: 1, Offset: 1})

	assert.Equal(t, ListQuotesResponse{
		Category: "Life",
		Quotes:   []QuoteResponse{{Text: "b", Category: "Life"}},
		Page:     PageInfo{Total: 2, Offset: 1, Limit: 1},
	}, got)
}

func TestNewListQuotesResponse_EmptyIsNotNull(t *testing.T) {
	got := NewListQuotesResponse(domain.AllCategories, nil, PageRequest{})

	assert.NotNil(t, got.Quotes)
	assert.Empty(t, got.Quotes)
}

func TestNewCategoriesResponse(t *testing.T) {
	got := NewCategoriesResponse([]string{"Life", "Work"}, "Work")

	assert.Equal(t, []string{domain.AllCategories, "Life", "Work"}, got.Categories)
	assert.Equal(t, "Work", got.Selected)
}

func TestNewSyncResponse(t *testing.T) {
	got := NewSyncResponse(app.SyncReport{Fetched: 3, Added: 2, Total: 10, Duration: 250 * time.Millisecond})

	assert.Equal(t, SyncResponse{Fetched: 3, Added: 2, Total: 10, DurationMS: 250}, got)
}
