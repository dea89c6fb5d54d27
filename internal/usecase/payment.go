package usecase

import (
	"context"
	"fmt"

	domainErrors "github.com/printware/printdesk/internal/domain/errors"
	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/domain/repository"
)

// legacyTaxDivisor backs out tax from gross totals on records predating price
// snapshots.
const legacyTaxDivisor = 1.18

// IsPaymentPending is the single point of truth for the payment gate: every
// payment status except COMPLETED blocks the actionable production timeline.
func IsPaymentPending(order *model.Order) bool {
	return order.PaymentStatus != model.PaymentStatusCompleted
}

// ComputeAmountDue returns the authoritative amount owed for an order. The
// price snapshot wins whenever present; the divisor formula exists only for
// legacy records created before snapshots were captured.
func ComputeAmountDue(order *model.Order) float64 {
	if order.PriceSnapshot != nil {
		return order.PriceSnapshot.TotalPayable
	}
	return order.TotalPrice / legacyTaxDivisor
}

// CheckoutSession is the gateway-specific checkout descriptor returned by
// payment initialization. Opaque beyond the fields needed to hand off.
type CheckoutSession struct {
	Reference   string
	CheckoutURL string
	Amount      float64
}

// PaymentGateway is the opaque external payment service.
type PaymentGateway interface {
	Initialize(ctx context.Context, orderNumber string, amount float64) (*CheckoutSession, error)
	Verify(ctx context.Context, reference string) (bool, error)
}

// PaymentUseCase drives the initialize/verify flow against the gateway.
type PaymentUseCase struct {
	orders  repository.OrderRepository
	gateway PaymentGateway
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(orders repository.OrderRepository, gateway PaymentGateway) *PaymentUseCase {
	return &PaymentUseCase{orders: orders, gateway: gateway}
}

// Initialize opens a checkout session for the amount due on the order.
func (u *PaymentUseCase) Initialize(ctx context.Context, orderID int64) (*CheckoutSession, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !IsPaymentPending(order) {
		return nil, domainErrors.ErrAlreadyExists
	}

	session, err := u.gateway.Initialize(ctx, order.OrderNumber, ComputeAmountDue(order))
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}
	return session, nil
}

// Verify checks the gateway outcome for a checkout reference. On success the
// order's payment status is settled and the refreshed order returned; a failed
// verification never lowers order state, it surfaces ErrPaymentNotVerified so
// callers can route the user to support instead of retrying automatically.
func (u *PaymentUseCase) Verify(ctx context.Context, orderID int64, reference string) (*model.Order, error) {
	ok, err := u.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !ok {
		return nil, domainErrors.ErrPaymentNotVerified
	}

	if err := u.orders.UpdatePaymentStatus(ctx, orderID, model.PaymentStatusCompleted); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}
