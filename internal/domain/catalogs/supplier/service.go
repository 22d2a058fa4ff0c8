package supplier

import (
	"context"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx"
	"bakerypos/internal/domain"
)

// Service provides business logic for Supplier catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo Repository
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager, audit domain.Auditor) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		Audit:      audit,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkName)
	base.Hooks().OnBeforeUpdate(svc.checkName)

	return svc
}

func (s *Service) checkName(ctx context.Context, sup *Supplier) error {
	exists, err := s.nameTaken(ctx, sup.Name, sup.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("supplier", "name", sup.Name)
	}
	return nil
}

// nameTaken checks if name is already used by another supplier.
func (s *Service) nameTaken(ctx context.Context, name string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
