// Package timeline derives an ordered progress view from the independently
// updated status fields of an order. The timeline is a value built once per
// fetch; render layers never recompute stage state from raw fields.
package timeline

import (
	"strings"
	"time"

	"github.com/printware/printdesk/internal/domain/model"
)

// StageStatus is the displayed state of a timeline stage.
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

// Stage keys for the fixed (non-department) stages.
const (
	KeyPlaced     = "placed"
	KeyProduction = "production"
	KeyPacking    = "packing"
	KeyShipped    = "shipped"
	KeyDelivered  = "delivered"
)

// Stage is one displayed step of the order's progress.
type Stage struct {
	Key       string
	Label     string
	Status    StageStatus
	Timestamp *time.Time
}

// Reconstruct maps an order onto its ordered stage list. The sequence argument
// is the product's configured department sequence; departments absent from the
// order's own entries still appear as pending placeholders.
//
// Each stage derives from its own dedicated fields only: a later stage never
// retroactively completes an earlier one that is still pending.
func Reconstruct(order *model.Order, sequence []string) []Stage {
	stages := make([]Stage, 0, len(sequence)+4)

	placedAt := order.CreatedAt
	stages = append(stages, Stage{
		Key:       KeyPlaced,
		Label:     "Order Placed",
		Status:    StageCompleted,
		Timestamp: &placedAt,
	})

	stages = append(stages, departmentStages(order, sequence)...)
	stages = append(stages, packingStage(order))
	stages = append(stages, shippedStage(order))
	stages = append(stages, deliveredStage(order))

	return stages
}

func departmentStages(order *model.Order, sequence []string) []Stage {
	if len(sequence) == 0 {
		// No configured sequence: fall back to the order's own entries, or a
		// single generic production placeholder when there are none either.
		if len(order.Departments) == 0 {
			return []Stage{{Key: KeyProduction, Label: "Production", Status: StagePending}}
		}
		sequence = make([]string, 0, len(order.Departments))
		for _, d := range order.Departments {
			sequence = append(sequence, d.Department)
		}
	}

	stages := make([]Stage, 0, len(sequence))
	for _, dept := range sequence {
		stages = append(stages, departmentStage(order, dept))
	}
	return stages
}

func departmentStage(order *model.Order, dept string) Stage {
	stage := Stage{Key: departmentKey(dept), Label: dept, Status: StagePending}
	for _, entry := range order.Departments {
		if !strings.EqualFold(entry.Department, dept) {
			continue
		}
		switch entry.Status {
		case model.DepartmentCompleted:
			stage.Status = StageCompleted
			stage.Timestamp = entry.CompletedAt
		case model.DepartmentInProgress, model.DepartmentPaused, model.DepartmentStopped:
			// The timeline has no notion of paused, only active.
			stage.Status = StageInProgress
			stage.Timestamp = entry.StartedAt
		default:
			stage.Status = StagePending
		}
		break
	}
	return stage
}

func departmentKey(dept string) string {
	return "dept:" + strings.ToLower(strings.ReplaceAll(strings.TrimSpace(dept), " ", "_"))
}

func packingStage(order *model.Order) Stage {
	stage := Stage{Key: KeyPacking, Label: "Packing", Status: StagePending}
	switch {
	case order.PackedAt != nil:
		stage.Status = StageCompleted
		stage.Timestamp = order.PackedAt
	case order.Status == model.OrderStatusCompleted:
		// Packing completion inferred from overall completion; updatedAt is
		// the best available timestamp when packedAt was never recorded.
		stage.Status = StageCompleted
		ts := order.UpdatedAt
		stage.Timestamp = &ts
	}
	return stage
}

func shippedStage(order *model.Order) Stage {
	stage := Stage{Key: KeyShipped, Label: "Shipped", Status: StagePending}
	if order.CourierStatus == model.CourierOutForDelivery {
		stage.Label = "Out for Delivery"
	}

	switch order.CourierStatus {
	case model.CourierInTransit, model.CourierOutForDelivery, model.CourierDelivered:
		stage.Status = StageCompleted
		stage.Timestamp = order.DispatchedAt
	default:
		if order.HasShipmentIdentifier() {
			stage.Status = StageInProgress
		}
	}
	return stage
}

func deliveredStage(order *model.Order) Stage {
	stage := Stage{Key: KeyDelivered, Label: "Delivered", Status: StagePending}
	if order.CourierStatus == model.CourierDelivered || order.DeliveredAt != nil {
		stage.Status = StageCompleted
		stage.Timestamp = order.DeliveredAt
	}
	return stage
}
