// Package supplier provides the Supplier catalog. Purchases from and payments
// to a supplier live in the supplier ledger.
package supplier

import (
	"context"
	"regexp"
	"strings"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
)

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRE = regexp.MustCompile(`^[0-9+()\- ]{5,30}$`)
)

// Supplier is a vendor the bakery buys from.
type Supplier struct {
	entity.Catalog

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	Phone   *string `db:"phone" json:"phone,omitempty"`
	Email   *string `db:"email" json:"email,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
}

// NewSupplier creates an active Supplier.
func NewSupplier(name string) *Supplier {
	return &Supplier{Catalog: entity.NewCatalog(name)}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.Email != nil && *s.Email != "" && !emailRE.MatchString(strings.TrimSpace(*s.Email)) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	if s.Phone != nil && *s.Phone != "" && !phoneRE.MatchString(*s.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}

	return nil
}
