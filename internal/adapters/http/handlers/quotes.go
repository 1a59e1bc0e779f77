package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/app"
)

// QuoteHandler serves the quote collection.
type QuoteHandler struct {
	store *app.QuoteStore
}

// NewQuoteHandler panics if store is nil.
func NewQuoteHandler(store *app.QuoteStore) *QuoteHandler {
	if store == nil {
		panic("QuoteHandler: store is required")
	}

	return &QuoteHandler{store: store}
}

// category returns the requested filter, falling back to the remembered one.
func (h *QuoteHandler) category(c *gin.Context, requested string) string {
	if requested != "" {
		return requested
	}

	return h.store.SelectedCategory(c.Request.Context())
}

// List handles GET /quotes.
func (h *QuoteHandler) List(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		RespondWithBindingError(c, err)
		return
	}

	category := h.category(c, req.Category)

	c.JSON(http.StatusOK, dto.NewListQuotesResponse(category, h.store.Filter(category), req.PageRequest))
}

// Random handles GET /quotes/random.
func (h *QuoteHandler) Random(c *gin.Context) {
	var req dto.RandomQuoteRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		RespondWithBindingError(c, err)
		return
	}

	q, ok := h.store.PickRandomIn(h.category(c, req.Category))
	if !ok {
		resp := dto.NewErrorResponse(dto.ErrorCodeNotFound, "no quotes available").WithTraceID(traceID(c))
		c.AbortWithStatusJSON(http.StatusNotFound, resp)

		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// Create handles POST /quotes.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		RespondWithBindingError(c, err)
		return
	}

	q, err := h.store.Add(c.Request.Context(), strings.TrimSpace(req.Text), strings.TrimSpace(req.Category))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(q))
}

// Categories handles GET /categories.
func (h *QuoteHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewCategoriesResponse(h.store.Categories(), h.store.SelectedCategory(c.Request.Context())))
}

// GetPreference handles GET /preferences/category.
func (h *QuoteHandler) GetPreference(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CategoryPreference{Category: h.store.SelectedCategory(c.Request.Context())})
}

// PutPreference handles PUT /preferences/category.
func (h *QuoteHandler) PutPreference(c *gin.Context) {
	var req dto.CategoryPreference
	if err := dto.BindAndValidate(c, &req); err != nil {
		RespondWithBindingError(c, err)
		return
	}

	if err := h.store.SelectCategory(c.Request.Context(), req.Category); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// Export handles GET /export.
func (h *QuoteHandler) Export(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="quotes.json"`)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)

	if err := h.store.ExportDocument(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// Import handles POST /import. The body is a JSON array of quotes.
func (h *QuoteHandler) Import(c *gin.Context) {
	n, err := h.store.ImportDocument(c.Request.Context(), c.Request.Body)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{Imported: n, Total: h.store.Len()})
}

// RegisterRoutes mounts the quote endpoints under rg.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes", h.List)
	rg.GET("/quotes/random", h.Random)
	rg.POST("/quotes", h.Create)
	rg.GET("/categories", h.Categories)
	rg.GET("/preferences/category", h.GetPreference)
	rg.PUT("/preferences/category", h.PutPreference)
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
}
