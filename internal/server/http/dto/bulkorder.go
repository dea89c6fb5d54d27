package dto

import (
	"time"

	"github.com/printware/printdesk/internal/domain/model"
)

// BulkStatusResponse is the polling snapshot of one bulk order.
type BulkStatusResponse struct {
	BulkOrderID     string `json:"bulk_order_id"`
	Status          string `json:"status"`
	OrderNumber     string `json:"order_number"`
	DistinctDesigns int    `json:"distinct_designs"`
	TotalCopies     int    `json:"total_copies"`
	ParentOrderID   *int64 `json:"parent_order_id,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// ToBulkStatusResponse maps a domain snapshot onto the wire format.
func ToBulkStatusResponse(snap *model.BulkStatus) BulkStatusResponse {
	return BulkStatusResponse{
		BulkOrderID:     snap.BulkOrderID,
		Status:          string(snap.Status),
		OrderNumber:     snap.OrderNumber,
		DistinctDesigns: snap.DistinctDesigns,
		TotalCopies:     snap.TotalCopies,
		ParentOrderID:   snap.ParentOrderID,
		FailureReason:   snap.FailureReason,
	}
}

// BulkOrderResponse is the list entry for a user's bulk uploads.
type BulkOrderResponse struct {
	BulkOrderID string    `json:"bulk_order_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ToBulkOrderResponse maps a bulk order onto the list wire format.
func ToBulkOrderResponse(bulk model.BulkOrder) BulkOrderResponse {
	return BulkOrderResponse{
		BulkOrderID: bulk.ID,
		OrderNumber: bulk.OrderNumber,
		Status:      string(bulk.Status),
		UploadedAt:  bulk.UploadedAt,
	}
}
