package supplier

import (
	"context"

	"bakerypos/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// FindByName retrieves an active supplier by exact name.
	FindByName(ctx context.Context, name string) (*Supplier, error)
}
