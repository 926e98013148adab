package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/backup"
	"stockpro/internal/infrastructure/http/v1/middleware"
	"stockpro/pkg/logger"
)

// maxBackupBytes caps uploaded backup archives.
const maxBackupBytes = 256 << 20

// BackupHandler handles database export and restore endpoints.
type BackupHandler struct {
	*BaseHandler
	service *backup.Service
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(base *BaseHandler, service *backup.Service) *BackupHandler {
	return &BackupHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Export handles GET /backup/export. The snapshot streams to the
// client as a gzip archive.
func (h *BackupHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	fileName := fmt.Sprintf("stockpro-backup-%s.json.gz", time.Now().Format("2006-01-02-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Header("Content-Type", "application/gzip")
	c.Status(http.StatusOK)

	if err := h.service.Export(ctx, c.Writer); err != nil {
		// Headers are already written, so the client sees a truncated body.
		logger.Error(ctx, "backup export failed", "error", err)
		c.Abort()
	}
}

// Import handles POST /backup/import. The archive arrives as a
// multipart form file and replaces the current data.
func (h *BackupHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	fh, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("multipart file field \"file\" is required"))
		return
	}
	if fh.Size > maxBackupBytes {
		h.Error(c, apperror.NewValidation("backup archive too large"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer f.Close()

	summary, err := h.service.Import(ctx, f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CompleteIdempotency(c, http.StatusOK, "application/json", summary)
	c.JSON(http.StatusOK, summary)
}

// RegisterRoutes registers backup routes. Both endpoints are admin only.
func (h *BackupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("", middleware.RequireRole("admin"))
	admin.GET("/export", h.Export)
	admin.POST("/import", h.Import)
}
