package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/printware/printdesk/internal/domain/errors"
	"github.com/printware/printdesk/internal/server/http/dto"
)

// OrderHandler serves order reads and the timeline projection.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Get handles GET /api/orders/:id. Orders belonging to another user are
// indistinguishable from missing ones.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.facade.Order(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "order lookup failed")
		return
	}
	if order.UserID != CurrentUserID(c) {
		respondError(c, http.StatusNotFound, "order not found")
		return
	}

	respondData(c, http.StatusOK, dto.ToOrderResponse(order))
}

// Timeline handles GET /api/orders/:id/timeline.
func (h *OrderHandler) Timeline(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	view, err := h.facade.OrderTimeline(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "timeline failed")
		return
	}
	if view.Order.UserID != CurrentUserID(c) {
		respondError(c, http.StatusNotFound, "order not found")
		return
	}

	respondData(c, http.StatusOK, dto.ToTimelineResponse(view))
}

func parseOrderID(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return orderID, true
}
