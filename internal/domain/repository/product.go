package repository

import (
	"context"

	"github.com/printware/printdesk/internal/domain/model"
)

// ProductRepository exposes product configuration, notably the production
// department sequence used to lay out order timelines.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	DepartmentSequence(ctx context.Context, productID int64) ([]string, error)
}
