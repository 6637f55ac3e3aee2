package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/export"
	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportShifts downloads every definition plus today's coverage as xlsx
func (h *Handler) ExportShifts(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.now()

	defs, err := h.Store.ListShifts(ctx)
	if err != nil {
		h.storeError(c, err)
		return
	}
	today, err := store.Today(ctx, h.Store, now)
	if err != nil {
		h.storeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSchedule(&buf, defs, today); err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "Failed to build workbook")
		return
	}

	filename := fmt.Sprintf("shifts_%s.xlsx", now.Format(models.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportShifts creates definitions from an uploaded workbook in a single
// batch, so a bad row imports nothing.
func (h *Handler) ImportShifts(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	defs, err := export.ReadShifts(file)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(defs) == 0 {
		fail(c, http.StatusBadRequest, "workbook contains no shifts")
		return
	}
	created, err := h.Store.CreateShifts(c.Request.Context(), defs)
	if err != nil {
		var batchErr *store.BatchError
		if errors.As(err, &batchErr) {
			fail(c, http.StatusBadRequest, fmt.Sprintf("row %d: %v", batchErr.Index+2, batchErr.Err))
			return
		}
		h.storeError(c, err)
		return
	}

	h.logger().Info("Imported shifts", zap.Int("count", len(created)), zap.String("file", header.Filename))
	c.JSON(http.StatusCreated, gin.H{"success": true, "shifts": created})
}
