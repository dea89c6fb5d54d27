package model

import "time"

// OrderStatus describes business lifecycle of a single order.
type OrderStatus string

const (
	OrderStatusRequest         OrderStatus = "request"
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusProductionReady OrderStatus = "production_ready"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// PaymentStatus is mutated by the external payment gateway flow.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusPartial           PaymentStatus = "PARTIAL"
	PaymentStatusCompleted         PaymentStatus = "COMPLETED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// DepartmentState describes progress within one production department.
type DepartmentState string

const (
	DepartmentPending    DepartmentState = "pending"
	DepartmentInProgress DepartmentState = "in_progress"
	DepartmentPaused     DepartmentState = "paused"
	DepartmentCompleted  DepartmentState = "completed"
	DepartmentStopped    DepartmentState = "stopped"
)

// DepartmentStatus is one entry of the order's production progress,
// updated independently by department operators.
type DepartmentStatus struct {
	Department  string
	Status      DepartmentState
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// CourierStatus is set by the courier integration. Empty means no courier event yet.
type CourierStatus string

const (
	CourierPickupScheduled CourierStatus = "pickup_scheduled"
	CourierInTransit       CourierStatus = "in_transit"
	CourierOutForDelivery  CourierStatus = "out_for_delivery"
	CourierDelivered       CourierStatus = "delivered"
)

// PriceSnapshot freezes the payable amount at order time.
type PriceSnapshot struct {
	TotalPayable float64
}

// Order describes a single print order. Status-bearing fields are owned by
// different subsystems (production staff, payment gateway, courier) and are
// updated independently of each other.
type Order struct {
	ID            int64
	UserID        int64
	ProductID     *int64
	OrderNumber   string
	DesignName    string
	Copies        int
	Status        OrderStatus
	PaymentStatus PaymentStatus

	TotalPrice    float64
	PriceSnapshot *PriceSnapshot

	Departments []DepartmentStatus

	CourierStatus         CourierStatus
	TrackingID            string
	AWBCode               string
	PackedAt              *time.Time
	DispatchedAt          *time.Time
	DeliveredAt           *time.Time
	PickupScheduledDate   *time.Time
	EstimatedDeliveryDate *time.Time

	IsBulkParent  bool
	IsBulkChild   bool
	ParentOrderID *int64
	BulkOrderID   *string
	ChildOrders   []int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasShipmentIdentifier reports whether any courier/tracking reference exists.
func (o *Order) HasShipmentIdentifier() bool {
	return o.TrackingID != "" || o.AWBCode != "" || o.CourierStatus != ""
}
