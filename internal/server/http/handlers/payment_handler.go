package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/printware/printdesk/internal/domain/errors"
	"github.com/printware/printdesk/internal/server/http/dto"
)

// paymentFacade combines order reads (for the ownership check) with the
// checkout flow.
type paymentFacade interface {
	OrderFacade
	PaymentFacade
}

// PaymentHandler drives the checkout initialize/verify flow.
type PaymentHandler struct {
	facade paymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade paymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Initialize handles POST /api/payment/initialize.
func (h *PaymentHandler) Initialize(c *gin.Context) {
	var req dto.PaymentInitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID <= 0 {
		respondError(c, http.StatusBadRequest, "order id required")
		return
	}
	if !h.ownsOrder(c, req.OrderID) {
		return
	}

	session, err := h.facade.InitializePayment(c.Request.Context(), req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			respondError(c, http.StatusConflict, "payment already settled")
		case errors.Is(err, domainErrors.ErrNotFound):
			respondError(c, http.StatusNotFound, "order not found")
		default:
			respondError(c, http.StatusBadGateway, "payment gateway unavailable")
		}
		return
	}

	respondData(c, http.StatusOK, dto.ToCheckoutSessionResponse(session))
}

// Verify handles POST /api/payment/verify. A verification failure never
// retries automatically; the client is told to contact support.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req dto.PaymentVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID <= 0 || req.Reference == "" {
		respondError(c, http.StatusBadRequest, "order id and reference required")
		return
	}
	if !h.ownsOrder(c, req.OrderID) {
		return
	}

	order, err := h.facade.VerifyPayment(c.Request.Context(), req.OrderID, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrPaymentNotVerified):
			respondError(c, http.StatusPaymentRequired, "payment could not be verified, please contact support")
		case errors.Is(err, domainErrors.ErrNotFound):
			respondError(c, http.StatusNotFound, "order not found")
		default:
			respondError(c, http.StatusBadGateway, "payment gateway unavailable")
		}
		return
	}

	respondData(c, http.StatusOK, dto.ToOrderResponse(order))
}

func (h *PaymentHandler) ownsOrder(c *gin.Context, orderID int64) bool {
	order, err := h.facade.Order(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "order not found")
			return false
		}
		respondError(c, http.StatusInternalServerError, "order lookup failed")
		return false
	}
	if order.UserID != CurrentUserID(c) {
		respondError(c, http.StatusNotFound, "order not found")
		return false
	}
	return true
}
