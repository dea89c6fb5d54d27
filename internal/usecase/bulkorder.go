package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/domain/repository"
)

// StatusCache caches client-observable bulk status snapshots. Implementations
// must degrade silently: a cache miss or backend failure surfaces as a plain
// miss, never as an error to the caller.
type StatusCache interface {
	Get(ctx context.Context, bulkOrderID string) (*model.BulkStatus, bool)
	Put(ctx context.Context, snapshot *model.BulkStatus)
}

// BulkOrderUseCase encapsulates the upload/split lifecycle of bulk orders.
type BulkOrderUseCase struct {
	bulks  repository.BulkOrderRepository
	cache  StatusCache
	logger *slog.Logger
}

// NewBulkOrderUseCase constructs BulkOrderUseCase.
func NewBulkOrderUseCase(bulks repository.BulkOrderRepository, cache StatusCache, logger *slog.Logger) *BulkOrderUseCase {
	return &BulkOrderUseCase{bulks: bulks, cache: cache, logger: logger}
}

// Upload validates the composite manifest and registers a new bulk order in
// UPLOADED. The order number is assigned here so the upload response can
// echo it; design counters stay zero until the split completes.
func (u *BulkOrderUseCase) Upload(ctx context.Context, userID int64, payload []byte) (*model.BulkOrder, error) {
	if _, err := ParseManifest(payload); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	bulk := &model.BulkOrder{
		ID:          id,
		UserID:      userID,
		OrderNumber: newOrderNumber(id),
		Status:      model.BulkOrderStatusUploaded,
		Payload:     payload,
	}

	created, err := u.bulks.Create(ctx, bulk)
	if err != nil {
		return nil, err
	}
	u.cache.Put(ctx, created.Snapshot())
	return created, nil
}

// Status returns the client-observable snapshot, cache first.
func (u *BulkOrderUseCase) Status(ctx context.Context, id string) (*model.BulkStatus, error) {
	if snap, ok := u.cache.Get(ctx, id); ok {
		return snap, nil
	}

	bulk, err := u.bulks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := bulk.Snapshot()
	u.cache.Put(ctx, snap)
	return snap, nil
}

// Cancel aborts a non-terminal bulk order. Cancelling a record that already
// reached a terminal status is ignored; the current snapshot is returned
// either way.
func (u *BulkOrderUseCase) Cancel(ctx context.Context, id string) (*model.BulkStatus, error) {
	applied, err := u.bulks.SetStatus(ctx, id, model.BulkOrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	bulk, err := u.bulks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := bulk.Snapshot()
	u.cache.Put(ctx, snap)
	if !applied {
		u.logger.Info("cancel ignored for terminal bulk order",
			slog.String("bulk_order", id), slog.String("status", string(bulk.Status)))
	}
	return snap, nil
}

// ListByUser returns the user's bulk orders sorted by upload time.
func (u *BulkOrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.BulkOrder, error) {
	return u.bulks.ListByUser(ctx, userID)
}

// ClaimForSplitting hands a batch of UPLOADED bulk orders to the split worker.
func (u *BulkOrderUseCase) ClaimForSplitting(ctx context.Context, limit int) ([]model.BulkOrder, error) {
	claimed, err := u.bulks.ClaimBatchForSplitting(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range claimed {
		u.cache.Put(ctx, claimed[i].Snapshot())
	}
	return claimed, nil
}

// MarkProcessing advances a claimed bulk order to PROCESSING.
func (u *BulkOrderUseCase) MarkProcessing(ctx context.Context, id string) error {
	applied, err := u.bulks.SetStatus(ctx, id, model.BulkOrderStatusProcessing)
	if err != nil {
		return err
	}
	if applied {
		u.refreshSnapshot(ctx, id)
	}
	return nil
}

// CompleteSplit finalizes a bulk order with its child orders.
func (u *BulkOrderUseCase) CompleteSplit(ctx context.Context, id string, designs []model.DesignSpec) (*model.BulkStatus, error) {
	bulk, applied, err := u.bulks.CompleteSplit(ctx, id, designs)
	if err != nil {
		return nil, err
	}
	snap := bulk.Snapshot()
	u.cache.Put(ctx, snap)
	if !applied {
		u.logger.Info("split completion ignored for terminal bulk order",
			slog.String("bulk_order", id), slog.String("status", string(bulk.Status)))
	}
	return snap, nil
}

// FailSplit marks a bulk order FAILED with the given reason.
func (u *BulkOrderUseCase) FailSplit(ctx context.Context, id, reason string) error {
	applied, err := u.bulks.SetFailed(ctx, id, reason)
	if err != nil {
		return err
	}
	if applied {
		u.refreshSnapshot(ctx, id)
	}
	return nil
}

func (u *BulkOrderUseCase) refreshSnapshot(ctx context.Context, id string) {
	bulk, err := u.bulks.GetByID(ctx, id)
	if err != nil {
		u.logger.Warn("refresh bulk snapshot failed", slog.String("bulk_order", id), slog.String("error", err.Error()))
		return
	}
	u.cache.Put(ctx, bulk.Snapshot())
}

// newOrderNumber derives the human-readable identifier from the opaque ID.
func newOrderNumber(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 10 {
		compact = compact[:10]
	}
	return "ORD-" + strings.ToUpper(compact)
}
