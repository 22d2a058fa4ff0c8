package entity

import (
	"time"
)

// Document is the base type for business transactions (bills, orders).
type Document struct {
	BaseEntity

	// Notes is an optional free-text comment
	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument() Document {
	return Document{BaseEntity: NewBaseEntity()}
}

// BusinessDay returns the calendar day of t in loc, at midnight.
func BusinessDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
