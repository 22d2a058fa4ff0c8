// Package shop holds the editable shop profile printed on receipts and shown
// on the login screen.
package shop

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}()

// Profile is the single shop profile row. A zero Version means it was never
// saved and the configured defaults are in use.
type Profile struct {
	ID            id.ID     `db:"id" json:"-"`
	Name          string    `db:"name" json:"name" validate:"required,max=200"`
	Address       string    `db:"address" json:"address" validate:"max=500"`
	Phone         string    `db:"phone" json:"phone" validate:"max=30"`
	Email         string    `db:"email" json:"email" validate:"omitempty,email,max=255"`
	Currency      string    `db:"currency" json:"currency" validate:"required,max=10"`
	ReceiptFooter string    `db:"receipt_footer" json:"receiptFooter" validate:"max=500"`
	Version       int       `db:"version" json:"version"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks field limits. The first failing field is reported.
func (p *Profile) Validate(_ context.Context) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.NewValidation(err.Error())
	}
	fe := fieldErrs[0]
	return apperror.NewValidation("invalid shop profile").
		WithDetail("field", fe.Field()).
		WithDetail("rule", fe.Tag())
}

// UpdateInput edits the profile. Nil fields keep their current value.
type UpdateInput struct {
	Name          *string
	Address       *string
	Phone         *string
	Email         *string
	Currency      *string
	ReceiptFooter *string
	Version       int
}

func (in UpdateInput) apply(p *Profile) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Name, in.Name)
	set(&p.Address, in.Address)
	set(&p.Phone, in.Phone)
	set(&p.Email, in.Email)
	set(&p.Currency, in.Currency)
	set(&p.ReceiptFooter, in.ReceiptFooter)
}

// Repository stores the profile row.
type Repository interface {
	// Get returns the stored profile, or apperror NotFound when none was saved.
	Get(ctx context.Context) (*Profile, error)

	// Save inserts the row when p.Version is 0 and otherwise updates it under
	// optimistic locking. On success p.Version is the stored version.
	Save(ctx context.Context, p *Profile) error
}
