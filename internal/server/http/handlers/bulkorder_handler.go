package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/printware/printdesk/internal/domain/errors"
	"github.com/printware/printdesk/internal/server/http/dto"
)

// maxManifestSize caps accepted composite manifest uploads.
const maxManifestSize = 10 << 20

// BulkOrderHandler manages the bulk upload/split endpoints.
type BulkOrderHandler struct {
	facade BulkFacade
}

// NewBulkOrderHandler constructs BulkOrderHandler.
func NewBulkOrderHandler(facade BulkFacade) *BulkOrderHandler {
	return &BulkOrderHandler{facade: facade}
}

// Upload handles POST /api/bulk-orders/upload. The manifest arrives as a
// multipart file; a raw body is accepted as fallback for plain clients.
func (h *BulkOrderHandler) Upload(c *gin.Context) {
	userID := CurrentUserID(c)

	payload, err := h.readManifest(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "manifest file required")
		return
	}

	bulk, err := h.facade.UploadBulk(c.Request.Context(), userID, payload)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrEmptyManifest), errors.Is(err, domainErrors.ErrInvalidManifest):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "upload failed")
		}
		return
	}

	respondData(c, http.StatusAccepted, dto.ToBulkStatusResponse(bulk.Snapshot()))
}

func (h *BulkOrderHandler) readManifest(c *gin.Context) ([]byte, error) {
	file, _, err := c.Request.FormFile("manifest")
	if err == nil {
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxManifestSize))
	}
	if c.ContentType() == "multipart/form-data" {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, maxManifestSize))
}

// Status handles GET /api/bulk-orders/:id/status.
func (h *BulkOrderHandler) Status(c *gin.Context) {
	snap, err := h.facade.BulkStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "bulk order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "status lookup failed")
		return
	}

	respondData(c, http.StatusOK, dto.ToBulkStatusResponse(snap))
}

// Cancel handles POST /api/bulk-orders/:id/cancel. Cancelling a record that
// already reached a terminal state returns the unchanged snapshot.
func (h *BulkOrderHandler) Cancel(c *gin.Context) {
	snap, err := h.facade.CancelBulk(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "bulk order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "cancel failed")
		return
	}

	respondData(c, http.StatusOK, dto.ToBulkStatusResponse(snap))
}

// List handles GET /api/bulk-orders.
func (h *BulkOrderHandler) List(c *gin.Context) {
	userID := CurrentUserID(c)
	bulks, err := h.facade.BulkOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "list failed")
		return
	}
	if len(bulks) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.BulkOrderResponse, 0, len(bulks))
	for _, b := range bulks {
		response = append(response, dto.ToBulkOrderResponse(b))
	}
	respondData(c, http.StatusOK, response)
}
