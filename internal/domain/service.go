package domain

import (
	"context"
	"fmt"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx"
	"bakerypos/pkg/logger"
)

// CatalogEntity is the constraint for records managed by CatalogService.
type CatalogEntity interface {
	entity.Validatable
	entity.Identifiable
}

// CatalogService provides business logic for catalog entities
// (brands, products, stock items, suppliers).
type CatalogService[T CatalogEntity] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	audit     Auditor
	hooks     *HookRegistry[T]

	// entityName for error messages and audit records
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T CatalogEntity] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	Audit      Auditor // optional
	EntityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T CatalogEntity](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		audit:      cfg.Audit,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Repo exposes the repository to entity-specific services.
func (s *CatalogService[T]) Repo() CatalogRepository[T] {
	return s.repo
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, entityID id.ID) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", entityID.String())
}

func (s *CatalogService[T]) record(ctx context.Context, entityID id.ID, action AuditAction, snapshot any) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.Record(ctx, s.entityName, entityID, action, snapshot)
}

// Create validates and inserts a new catalog entity.
func (s *CatalogService[T]) Create(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeCreate, e); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return s.record(ctx, e.GetID(), AuditCreate, e)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterCreate, e); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// GetByID retrieves entity by ID. Inactive records are returned as well.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		var zero T
		return zero, s.normalizeGetErr(err, entityID)
	}
	return e, nil
}

// Update validates and saves an entity under optimistic locking.
func (s *CatalogService[T]) Update(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeUpdate, e); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, e); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return s.record(ctx, e.GetID(), AuditUpdate, e)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterUpdate, e); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// Deactivate is the catalog "delete": the status flips to inactive and the
// row stays referenceable from historical bill and order lines.
func (s *CatalogService[T]) Deactivate(ctx context.Context, entityID id.ID) error {
	e, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID)
	}

	if err := s.hooks.Run(ctx, BeforeDeactivate, e); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetStatus(ctx, entityID, entity.StatusInactive); err != nil {
			return fmt.Errorf("deactivate %s: %w", s.entityName, err)
		}
		return s.record(ctx, entityID, AuditDeactivate, map[string]any{"status": entity.StatusInactive})
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterDeactivate, e); err != nil {
		logger.Warn(ctx, "after-deactivate hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}

// Exists checks if entity exists.
func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}
