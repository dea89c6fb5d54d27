package repository

import (
	"context"

	"github.com/printware/printdesk/internal/domain/model"
)

// BulkOrderRepository describes persistence operations with bulk orders.
//
// Status mutations are guarded: once a record holds a terminal status no
// update changes it. Guarded methods report applied=false instead of failing
// so that stale transition attempts are ignored, not treated as errors.
type BulkOrderRepository interface {
	Create(ctx context.Context, bulk *model.BulkOrder) (*model.BulkOrder, error)
	GetByID(ctx context.Context, id string) (*model.BulkOrder, error)
	ListByUser(ctx context.Context, userID int64) ([]model.BulkOrder, error)

	// ClaimBatchForSplitting atomically moves up to limit UPLOADED records to
	// SPLITTING and returns them.
	ClaimBatchForSplitting(ctx context.Context, limit int) ([]model.BulkOrder, error)

	SetStatus(ctx context.Context, id string, status model.BulkOrderStatus) (bool, error)
	SetFailed(ctx context.Context, id string, reason string) (bool, error)

	// CompleteSplit persists the parent order and one child order per design,
	// finalizes counters and order number, and moves the record to
	// ORDER_CREATED, all within one transaction. If the record reached a
	// terminal status in the meantime nothing is written and applied=false.
	CompleteSplit(ctx context.Context, id string, designs []model.DesignSpec) (*model.BulkOrder, bool, error)
}
