// Package entity provides the base types embedded by catalogs and documents.
package entity

import (
	"context"
	"time"

	"bakerypos/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// Identifiable exposes the primary key.
type Identifiable interface {
	GetID() id.ID
}

// Status is the lifecycle flag of catalog records. "Deleting" a catalog
// record flips it to inactive; historical lines keep referencing it.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// BaseEntity contains the fields every table row carries.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID returns the primary key.
func (b *BaseEntity) GetID() id.ID {
	return b.ID
}

// Touch bumps UpdatedAt before a save.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// SetVersion updates the version number (used by repository after sync).
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}
