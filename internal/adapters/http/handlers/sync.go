package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/app"
)

// SyncHandler triggers a remote merge on demand.
type SyncHandler struct {
	syncer app.Syncer
}

// NewSyncHandler panics if syncer is nil.
func NewSyncHandler(syncer app.Syncer) *SyncHandler {
	if syncer == nil {
		panic("SyncHandler: syncer is required")
	}

	return &SyncHandler{syncer: syncer}
}

// Sync handles POST /sync.
func (h *SyncHandler) Sync(c *gin.Context) {
	report, err := h.syncer.Sync(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSyncResponse(report))
}

// RegisterRoutes mounts POST /sync under rg.
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.Sync)
}
