package dto

import (
	"time"

	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/timeline"
	"github.com/printware/printdesk/internal/usecase"
)

// OrderResponse describes one order for API consumers.
type OrderResponse struct {
	ID            int64     `json:"id"`
	OrderNumber   string    `json:"order_number"`
	DesignName    string    `json:"design_name,omitempty"`
	Copies        int       `json:"copies"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	IsBulkParent  bool      `json:"is_bulk_parent,omitempty"`
	IsBulkChild   bool      `json:"is_bulk_child,omitempty"`
	ChildOrders   []int64   `json:"child_orders,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToOrderResponse maps an order onto the wire format.
func ToOrderResponse(order *model.Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		DesignName:    order.DesignName,
		Copies:        order.Copies,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		IsBulkParent:  order.IsBulkParent,
		IsBulkChild:   order.IsBulkChild,
		ChildOrders:   order.ChildOrders,
		CreatedAt:     order.CreatedAt,
	}
}

// TimelineStageResponse is one rendered stage of the order timeline.
type TimelineStageResponse struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Status    string     `json:"status"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// TimelineResponse is the gatekeeper-aware progress view. While payment is
// pending the stages array is absent and the amount due is exposed instead.
type TimelineResponse struct {
	Order          OrderResponse           `json:"order"`
	PaymentPending bool                    `json:"payment_pending"`
	AmountDue      float64                 `json:"amount_due,omitempty"`
	Stages         []TimelineStageResponse `json:"stages,omitempty"`
}

// ToTimelineResponse maps a timeline view onto the wire format.
func ToTimelineResponse(view *usecase.TimelineView) TimelineResponse {
	resp := TimelineResponse{
		Order:          ToOrderResponse(view.Order),
		PaymentPending: view.PaymentPending,
	}
	if view.PaymentPending {
		resp.AmountDue = view.AmountDue
		return resp
	}
	resp.Stages = make([]TimelineStageResponse, 0, len(view.Stages))
	for _, stage := range view.Stages {
		resp.Stages = append(resp.Stages, toStageResponse(stage))
	}
	return resp
}

func toStageResponse(stage timeline.Stage) TimelineStageResponse {
	return TimelineStageResponse{
		Key:       stage.Key,
		Label:     stage.Label,
		Status:    string(stage.Status),
		Timestamp: stage.Timestamp,
	}
}
