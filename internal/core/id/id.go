// Package id provides UUIDv7 identifiers for every persisted record.
package id

import (
	"github.com/google/uuid"
)

// ID is the primary key type of all tables.
type ID = uuid.UUID

// New returns a time-ordered UUIDv7, so bills and orders sort by creation.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
