package dto

import "github.com/printware/printdesk/internal/usecase"

// PaymentInitializeRequest opens a checkout session for an order.
type PaymentInitializeRequest struct {
	OrderID int64 `json:"order_id"`
}

// PaymentVerifyRequest confirms a checkout outcome.
type PaymentVerifyRequest struct {
	OrderID   int64  `json:"order_id"`
	Reference string `json:"reference"`
}

// CheckoutSessionResponse hands the checkout descriptor to the client.
type CheckoutSessionResponse struct {
	Reference   string  `json:"reference"`
	CheckoutURL string  `json:"checkout_url"`
	Amount      float64 `json:"amount"`
}

// ToCheckoutSessionResponse maps a checkout session onto the wire format.
func ToCheckoutSessionResponse(session *usecase.CheckoutSession) CheckoutSessionResponse {
	return CheckoutSessionResponse{
		Reference:   session.Reference,
		CheckoutURL: session.CheckoutURL,
		Amount:      session.Amount,
	}
}
