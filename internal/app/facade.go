package app

import (
	"context"

	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/usecase"
)

// OpsFacade is the single application surface consumed by the HTTP layer and
// the split worker. It delegates to the underlying use cases without adding
// behaviour of its own.
type OpsFacade struct {
	auth    *usecase.AuthUseCase
	bulks   *usecase.BulkOrderUseCase
	orders  *usecase.OrderUseCase
	payment *usecase.PaymentUseCase
}

func NewOpsFacade(auth *usecase.AuthUseCase, bulks *usecase.BulkOrderUseCase, orders *usecase.OrderUseCase, payment *usecase.PaymentUseCase) *OpsFacade {
	return &OpsFacade{auth: auth, bulks: bulks, orders: orders, payment: payment}
}

func (f *OpsFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *OpsFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *OpsFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *OpsFacade) UploadBulk(ctx context.Context, userID int64, payload []byte) (*model.BulkOrder, error) {
	return f.bulks.Upload(ctx, userID, payload)
}

func (f *OpsFacade) BulkStatus(ctx context.Context, id string) (*model.BulkStatus, error) {
	return f.bulks.Status(ctx, id)
}

func (f *OpsFacade) CancelBulk(ctx context.Context, id string) (*model.BulkStatus, error) {
	return f.bulks.Cancel(ctx, id)
}

func (f *OpsFacade) BulkOrders(ctx context.Context, userID int64) ([]model.BulkOrder, error) {
	return f.bulks.ListByUser(ctx, userID)
}

func (f *OpsFacade) ClaimBulkOrders(ctx context.Context, limit int) ([]model.BulkOrder, error) {
	return f.bulks.ClaimForSplitting(ctx, limit)
}

func (f *OpsFacade) MarkProcessing(ctx context.Context, bulkOrderID string) error {
	return f.bulks.MarkProcessing(ctx, bulkOrderID)
}

func (f *OpsFacade) CompleteSplit(ctx context.Context, bulkOrderID string, designs []model.DesignSpec) (*model.BulkStatus, error) {
	return f.bulks.CompleteSplit(ctx, bulkOrderID, designs)
}

func (f *OpsFacade) FailSplit(ctx context.Context, bulkOrderID, reason string) error {
	return f.bulks.FailSplit(ctx, bulkOrderID, reason)
}

func (f *OpsFacade) Order(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, id)
}

func (f *OpsFacade) OrderTimeline(ctx context.Context, id int64) (*usecase.TimelineView, error) {
	return f.orders.Timeline(ctx, id)
}

func (f *OpsFacade) InitializePayment(ctx context.Context, orderID int64) (*usecase.CheckoutSession, error) {
	return f.payment.Initialize(ctx, orderID)
}

func (f *OpsFacade) VerifyPayment(ctx context.Context, orderID int64, reference string) (*model.Order, error) {
	return f.payment.Verify(ctx, orderID, reference)
}
