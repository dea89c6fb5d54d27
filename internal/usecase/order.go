package usecase

import (
	"context"
	"errors"

	domainErrors "github.com/printware/printdesk/internal/domain/errors"
	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/domain/repository"
	"github.com/printware/printdesk/internal/timeline"
)

// TimelineView is the gatekeeper-aware progress projection for one order.
// Stages are only populated when payment is settled; while payment is pending
// the production timeline is withheld and the payment-collection path (amount
// due) is exposed instead.
type TimelineView struct {
	Order          *model.Order
	PaymentPending bool
	AmountDue      float64
	Stages         []timeline.Stage
}

// OrderUseCase encapsulates read access to orders and their progress views.
type OrderUseCase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, products repository.ProductRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, products: products}
}

// Get fetches one order by ID.
func (u *OrderUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// ListByUser returns the user's orders.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// Timeline builds the progress view for one order. The department sequence
// comes from the product configuration, so not-yet-started departments still
// appear as pending placeholders.
func (u *OrderUseCase) Timeline(ctx context.Context, id int64) (*TimelineView, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &TimelineView{
		Order:          order,
		PaymentPending: IsPaymentPending(order),
		AmountDue:      ComputeAmountDue(order),
	}
	if view.PaymentPending {
		return view, nil
	}

	var sequence []string
	if order.ProductID != nil {
		sequence, err = u.products.DepartmentSequence(ctx, *order.ProductID)
		if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
	}

	view.Stages = timeline.Reconstruct(order, sequence)
	return view, nil
}
