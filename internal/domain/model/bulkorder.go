package model

import "time"

// BulkOrderStatus describes the split pipeline lifecycle.
type BulkOrderStatus string

const (
	BulkOrderStatusUploaded     BulkOrderStatus = "UPLOADED"
	BulkOrderStatusSplitting    BulkOrderStatus = "SPLITTING"
	BulkOrderStatusProcessing   BulkOrderStatus = "PROCESSING"
	BulkOrderStatusOrderCreated BulkOrderStatus = "ORDER_CREATED"
	BulkOrderStatusFailed       BulkOrderStatus = "FAILED"
	BulkOrderStatusCancelled    BulkOrderStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is defined for the status.
func (s BulkOrderStatus) IsTerminal() bool {
	switch s {
	case BulkOrderStatusOrderCreated, BulkOrderStatusFailed, BulkOrderStatusCancelled:
		return true
	}
	return false
}

// BulkOrder describes a composite upload split server-side into child orders.
type BulkOrder struct {
	ID              string
	UserID          int64
	OrderNumber     string
	Status          BulkOrderStatus
	Payload         []byte
	DistinctDesigns int
	TotalCopies     int
	ParentOrderID   *int64
	FailureReason   string
	UploadedAt      time.Time
	UpdatedAt       time.Time
}

// Snapshot projects the client-observable part of the bulk order.
func (b *BulkOrder) Snapshot() *BulkStatus {
	return &BulkStatus{
		BulkOrderID:     b.ID,
		Status:          b.Status,
		OrderNumber:     b.OrderNumber,
		DistinctDesigns: b.DistinctDesigns,
		TotalCopies:     b.TotalCopies,
		ParentOrderID:   b.ParentOrderID,
		FailureReason:   b.FailureReason,
	}
}

// BulkStatus is the snapshot returned by the status endpoint and carried by pollers.
type BulkStatus struct {
	BulkOrderID     string
	Status          BulkOrderStatus
	OrderNumber     string
	DistinctDesigns int
	TotalCopies     int
	ParentOrderID   *int64
	FailureReason   string
}

// DesignSpec is one distinct design extracted from a composite manifest.
type DesignSpec struct {
	Name   string
	Copies int
}
