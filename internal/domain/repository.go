// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"

	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for catalog list operations.
type ListFilter struct {
	// Search matches name (ILIKE %search%)
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// IncludeInactive lists deactivated records too
	IncludeInactive bool

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   10,
		OrderBy: "name",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Repository Interfaces ---

// CatalogRepository defines CRUD operations for catalog entities.
type CatalogRepository[T entity.Validatable] interface {
	// Create inserts a new entity
	Create(ctx context.Context, entity T) error

	// GetByID retrieves entity by ID regardless of status
	GetByID(ctx context.Context, id id.ID) (T, error)

	// Update modifies existing entity (with optimistic locking)
	Update(ctx context.Context, entity T) error

	// SetStatus flips the lifecycle status. Rows are never physically removed.
	SetStatus(ctx context.Context, id id.ID, status entity.Status) error

	// List retrieves entities with filtering and pagination
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// Exists checks if entity with given ID exists
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate     HookEvent = "before_create"
	AfterCreate      HookEvent = "after_create"
	BeforeUpdate     HookEvent = "before_update"
	AfterUpdate      HookEvent = "after_update"
	BeforeDeactivate HookEvent = "before_deactivate"
	AfterDeactivate  HookEvent = "after_deactivate"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeCreate registers a hook to run before create.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) {
	r.On(BeforeCreate, hook)
}

// OnAfterCreate registers a hook to run after create.
func (r *HookRegistry[T]) OnAfterCreate(hook Hook[T]) {
	r.On(AfterCreate, hook)
}

// OnBeforeUpdate registers a hook to run before update.
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) {
	r.On(BeforeUpdate, hook)
}

// OnAfterUpdate registers a hook to run after update.
func (r *HookRegistry[T]) OnAfterUpdate(hook Hook[T]) {
	r.On(AfterUpdate, hook)
}

// OnBeforeDeactivate registers a hook to run before the status flips to inactive.
func (r *HookRegistry[T]) OnBeforeDeactivate(hook Hook[T]) {
	r.On(BeforeDeactivate, hook)
}

// OnAfterDeactivate registers a hook to run after deactivation.
func (r *HookRegistry[T]) OnAfterDeactivate(hook Hook[T]) {
	r.On(AfterDeactivate, hook)
}
