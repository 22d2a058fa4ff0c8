package brand

import (
	"context"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/tx"
	"bakerypos/internal/domain"
)

// Service provides business logic for Brand catalog.
type Service struct {
	*domain.CatalogService[*Brand]
	repo Repository
}

// NewService creates a new Brand service.
func NewService(repo Repository, txManager tx.Manager, audit domain.Auditor) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Brand]{
		Repo:       repo,
		TxManager:  txManager,
		Audit:      audit,
		EntityName: "brand",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkName)
	base.Hooks().OnBeforeUpdate(svc.checkName)

	return svc
}

func (s *Service) checkName(ctx context.Context, b *Brand) error {
	existing, err := s.repo.FindByName(ctx, b.Name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != b.ID {
		return apperror.NewDuplicate("brand", "name", b.Name)
	}
	return nil
}

// ListWithProductCount returns brands with the number of active products.
func (s *Service) ListWithProductCount(ctx context.Context, filter domain.ListFilter) ([]WithProductCount, error) {
	return s.repo.ListWithProductCount(ctx, filter)
}
