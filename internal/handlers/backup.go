package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/kimshinchol/nnponline-sub000/internal/errors"
	"github.com/kimshinchol/nnponline-sub000/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BackupHandler covers the admin export / bulk-delete surface.
type BackupHandler struct {
	backupService *services.BackupService
}

func NewBackupHandler(backupService *services.BackupService) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
	}
}

// ExportTasks streams an xlsx export of every task created in the requested
// date range.
func (h *BackupHandler) ExportTasks(c *gin.Context) {
	from, to, ok := h.rangeParams(c)
	if !ok {
		return
	}

	tasks, err := h.backupService.Collect(from, to)
	if err != nil {
		apierrors.InternalError(c, "Failed to collect tasks")
		return
	}

	file, err := h.backupService.ExportXLSX(tasks)
	if err != nil {
		apierrors.InternalError(c, "Failed to render export")
		return
	}

	filename := fmt.Sprintf("tasks_%s_%s.xlsx", c.Query("startDate"), c.Query("endDate"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := file.Write(c.Writer); err != nil {
		// Headers are already gone; nothing useful left to send.
		c.Abort()
	}
}

// DeleteTasks bulk-deletes every task created in the requested date range
// and reports the count. The selection is recomputed here, independent of
// any prior export.
func (h *BackupHandler) DeleteTasks(c *gin.Context) {
	from, to, ok := h.rangeParams(c)
	if !ok {
		return
	}

	count, err := h.backupService.DeleteRange(from, to)
	if err != nil {
		apierrors.InternalError(c, "Failed to delete tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks deleted",
		"deleted": count,
	})
}

func (h *BackupHandler) rangeParams(c *gin.Context) (time.Time, time.Time, bool) {
	from, to, err := h.backupService.ParseRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidDateRange) {
			apierrors.BadRequest(c, "startDate and endDate must be YYYY-MM-DD with startDate <= endDate")
		} else {
			apierrors.InternalError(c, "Internal server error")
		}
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
