package handlers

import (
	"context"

	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// BulkFacade exposes the bulk order pipeline to HTTP handlers.
type BulkFacade interface {
	UploadBulk(ctx context.Context, userID int64, payload []byte) (*model.BulkOrder, error)
	BulkStatus(ctx context.Context, bulkOrderID string) (*model.BulkStatus, error)
	CancelBulk(ctx context.Context, bulkOrderID string) (*model.BulkStatus, error)
	BulkOrders(ctx context.Context, userID int64) ([]model.BulkOrder, error)
}

// OrderFacade exposes order reads and the timeline projection.
type OrderFacade interface {
	Order(ctx context.Context, orderID int64) (*model.Order, error)
	OrderTimeline(ctx context.Context, orderID int64) (*usecase.TimelineView, error)
}

// PaymentFacade drives the checkout initialize/verify flow.
type PaymentFacade interface {
	InitializePayment(ctx context.Context, orderID int64) (*usecase.CheckoutSession, error)
	VerifyPayment(ctx context.Context, orderID int64, reference string) (*model.Order, error)
}

// OpsFacade aggregates the full set of operations used across handlers.
type OpsFacade interface {
	AuthFacade
	BulkFacade
	OrderFacade
	PaymentFacade
}
