package entity

import (
	"context"
	"strings"

	"bakerypos/internal/core/apperror"
)

// Catalog is the base type for reference data: brands, products, stock items, suppliers.
type Catalog struct {
	BaseEntity

	// Name is the display name
	Name string `db:"name" json:"name"`

	Status Status `db:"status" json:"status"`
}

// NewCatalog creates an active Catalog with generated ID.
func NewCatalog(name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Status:     StatusActive,
	}
}

// IsActive reports whether the record is visible in active listings.
func (c *Catalog) IsActive() bool {
	return c.Status == StatusActive
}

// Deactivate is the soft delete of a catalog record.
func (c *Catalog) Deactivate() {
	c.Status = StatusInactive
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	if !c.Status.IsValid() {
		return apperror.NewInvalidStatus("catalog", string(c.Status))
	}
	return nil
}
