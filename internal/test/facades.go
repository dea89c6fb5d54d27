package test

import (
	"context"
	"sync"

	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/usecase"
)

// BulkFacadeStub provides controllable behaviour for bulk order endpoints.
type BulkFacadeStub struct {
	UploadFn func(context.Context, int64, []byte) (*model.BulkOrder, error)
	StatusFn func(context.Context, string) (*model.BulkStatus, error)
	CancelFn func(context.Context, string) (*model.BulkStatus, error)
	ListFn   func(context.Context, int64) ([]model.BulkOrder, error)
}

// UploadBulk delegates to the override or returns a default uploaded record.
func (s BulkFacadeStub) UploadBulk(ctx context.Context, userID int64, payload []byte) (*model.BulkOrder, error) {
	if s.UploadFn != nil {
		return s.UploadFn(ctx, userID, payload)
	}
	return &model.BulkOrder{ID: "bulk-1", UserID: userID, OrderNumber: "ORD-1", Status: model.BulkOrderStatusUploaded}, nil
}

// BulkStatus delegates to the override or returns an UPLOADED snapshot.
func (s BulkFacadeStub) BulkStatus(ctx context.Context, id string) (*model.BulkStatus, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, id)
	}
	return &model.BulkStatus{BulkOrderID: id, Status: model.BulkOrderStatusUploaded}, nil
}

// CancelBulk delegates to the override or returns a CANCELLED snapshot.
func (s BulkFacadeStub) CancelBulk(ctx context.Context, id string) (*model.BulkStatus, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, id)
	}
	return &model.BulkStatus{BulkOrderID: id, Status: model.BulkOrderStatusCancelled}, nil
}

// BulkOrders returns predefined bulk orders for the user.
func (s BulkFacadeStub) BulkOrders(ctx context.Context, userID int64) ([]model.BulkOrder, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, userID)
	}
	return []model.BulkOrder{{ID: "bulk-1", UserID: userID}}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	OrderFn    func(context.Context, int64) (*model.Order, error)
	TimelineFn func(context.Context, int64) (*usecase.TimelineView, error)
}

// Order delegates to the override or returns a minimal order.
func (s OrderFacadeStub) Order(ctx context.Context, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id, UserID: 1, PaymentStatus: model.PaymentStatusCompleted}, nil
}

// OrderTimeline delegates to the override or returns an ungated empty view.
func (s OrderFacadeStub) OrderTimeline(ctx context.Context, id int64) (*usecase.TimelineView, error) {
	if s.TimelineFn != nil {
		return s.TimelineFn(ctx, id)
	}
	return &usecase.TimelineView{Order: &model.Order{ID: id, UserID: 1}}, nil
}

// PaymentFacadeStub simulates the payment flow.
type PaymentFacadeStub struct {
	InitializeFn func(context.Context, int64) (*usecase.CheckoutSession, error)
	VerifyFn     func(context.Context, int64, string) (*model.Order, error)
}

// InitializePayment delegates to the override or returns a fixed session.
func (s PaymentFacadeStub) InitializePayment(ctx context.Context, orderID int64) (*usecase.CheckoutSession, error) {
	if s.InitializeFn != nil {
		return s.InitializeFn(ctx, orderID)
	}
	return &usecase.CheckoutSession{Reference: "ref", CheckoutURL: "https://pay.example/ref", Amount: 1}, nil
}

// VerifyPayment delegates to the override or returns a settled order.
func (s PaymentFacadeStub) VerifyPayment(ctx context.Context, orderID int64, reference string) (*model.Order, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, orderID, reference)
	}
	return &model.Order{ID: orderID, PaymentStatus: model.PaymentStatusCompleted}, nil
}

// SplitCall records one split-worker facade invocation.
type SplitCall struct {
	BulkOrderID string
	Designs     []model.DesignSpec
	Reason      string
}

// WorkerFacadeStub provides controllable behaviour for the split worker.
type WorkerFacadeStub struct {
	sync.Mutex
	Batches    [][]model.BulkOrder
	batchIdx   int
	ClaimFn    func(context.Context, int) ([]model.BulkOrder, error)
	CompleteFn func(context.Context, string, []model.DesignSpec) (*model.BulkStatus, error)
	FailFn     func(context.Context, string, string) error

	Processing []string
	Completed  []SplitCall
	Failed     []SplitCall
}

// ClaimBulkOrders serves scripted batches, then empties.
func (s *WorkerFacadeStub) ClaimBulkOrders(ctx context.Context, limit int) ([]model.BulkOrder, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, limit)
	}
	s.Lock()
	defer s.Unlock()
	if s.batchIdx >= len(s.Batches) {
		return nil, nil
	}
	batch := s.Batches[s.batchIdx]
	s.batchIdx++
	return batch, nil
}

// MarkProcessing records the transition.
func (s *WorkerFacadeStub) MarkProcessing(ctx context.Context, id string) error {
	s.Lock()
	defer s.Unlock()
	s.Processing = append(s.Processing, id)
	return nil
}

// CompleteSplit records the completion call.
func (s *WorkerFacadeStub) CompleteSplit(ctx context.Context, id string, designs []model.DesignSpec) (*model.BulkStatus, error) {
	if s.CompleteFn != nil {
		return s.CompleteFn(ctx, id, designs)
	}
	s.Lock()
	defer s.Unlock()
	s.Completed = append(s.Completed, SplitCall{BulkOrderID: id, Designs: designs})
	return &model.BulkStatus{BulkOrderID: id, Status: model.BulkOrderStatusOrderCreated}, nil
}

// FailSplit records the failure call.
func (s *WorkerFacadeStub) FailSplit(ctx context.Context, id, reason string) error {
	if s.FailFn != nil {
		return s.FailFn(ctx, id, reason)
	}
	s.Lock()
	defer s.Unlock()
	s.Failed = append(s.Failed, SplitCall{BulkOrderID: id, Reason: reason})
	return nil
}

// GatewayStub simulates the external payment gateway.
type GatewayStub struct {
	InitializeFn func(context.Context, string, float64) (*usecase.CheckoutSession, error)
	VerifyFn     func(context.Context, string) (bool, error)
}

// Initialize delegates to the override or opens a deterministic session.
func (s GatewayStub) Initialize(ctx context.Context, orderNumber string, amount float64) (*usecase.CheckoutSession, error) {
	if s.InitializeFn != nil {
		return s.InitializeFn(ctx, orderNumber, amount)
	}
	return &usecase.CheckoutSession{Reference: "ref-" + orderNumber, CheckoutURL: "https://pay.example/ref-" + orderNumber, Amount: amount}, nil
}

// Verify delegates to the override or reports the payment settled.
func (s GatewayStub) Verify(ctx context.Context, reference string) (bool, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, reference)
	}
	return true, nil
}
