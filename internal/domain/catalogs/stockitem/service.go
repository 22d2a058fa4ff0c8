package stockitem

import (
	"context"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/tx"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
)

// Service provides business logic for StockItem catalog.
type Service struct {
	*domain.CatalogService[*StockItem]
	repo Repository
}

// NewService creates a new StockItem service.
func NewService(repo Repository, txManager tx.Manager, audit domain.Auditor) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*StockItem]{
		Repo:       repo,
		TxManager:  txManager,
		Audit:      audit,
		EntityName: "stock item",
	})
	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// LowStock returns items at or below threshold. A nil threshold means
// DefaultLowStockThreshold.
func (s *Service) LowStock(ctx context.Context, threshold *types.Quantity) ([]*StockItem, error) {
	t := DefaultLowStockThreshold
	if threshold != nil {
		if threshold.IsNegative() {
			return nil, apperror.NewValidation("threshold must not be negative").
				WithDetail("field", "threshold")
		}
		t = *threshold
	}
	return s.repo.LowStock(ctx, t)
}

// ListSellable returns the items offered on the till.
func (s *Service) ListSellable(ctx context.Context) ([]*StockItem, error) {
	return s.repo.ListSellable(ctx)
}
