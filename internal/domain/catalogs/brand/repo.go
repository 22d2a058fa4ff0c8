package brand

import (
	"context"

	"bakerypos/internal/domain"
)

// Repository defines the interface for Brand persistence.
type Repository interface {
	domain.CatalogRepository[*Brand]

	// FindByName retrieves a brand by exact name.
	FindByName(ctx context.Context, name string) (*Brand, error)

	// ListWithProductCount returns brands with their active product count.
	ListWithProductCount(ctx context.Context, filter domain.ListFilter) ([]WithProductCount, error)
}
