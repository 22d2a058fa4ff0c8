package product

import (
	"context"
	"fmt"
	"time"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/tx"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/domain/pricing"
	"bakerypos/pkg/logger"
)

// Service provides business logic for Product catalog and builds the POS
// catalog with current prices.
type Service struct {
	*domain.CatalogService[*Product]
	repo     Repository
	brands   BrandChecker
	sellable SellableLister
	policy   *pricing.Policy
	cache    POSCache
	now      func() time.Time
}

// Config wires the product Service.
type Config struct {
	Repo      Repository
	TxManager tx.Manager
	Audit     domain.Auditor
	Brands    BrandChecker
	Sellable  SellableLister
	Policy    *pricing.Policy
	Cache     POSCache // optional
	Now       func() time.Time
}

// NewService creates a new Product service.
func NewService(cfg Config) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       cfg.Repo,
		TxManager:  cfg.TxManager,
		Audit:      cfg.Audit,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           cfg.Repo,
		brands:         cfg.Brands,
		sellable:       cfg.Sellable,
		policy:         cfg.Policy,
		cache:          cfg.Cache,
		now:            cfg.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}

	base.Hooks().OnBeforeCreate(svc.checkBrand)
	base.Hooks().OnBeforeUpdate(svc.checkBrand)
	base.Hooks().OnAfterCreate(svc.invalidate)
	base.Hooks().OnAfterUpdate(svc.invalidate)
	base.Hooks().OnAfterDeactivate(svc.invalidate)

	return svc
}

func (s *Service) checkBrand(ctx context.Context, p *Product) error {
	if p.BrandID == nil || s.brands == nil {
		return nil
	}
	ok, err := s.brands.Exists(ctx, *p.BrandID)
	if err != nil {
		return fmt.Errorf("check brand: %w", err)
	}
	if !ok {
		return apperror.NewValidation("brand does not exist").
			WithDetail("field", "brandId").
			WithDetail("value", p.BrandID.String())
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, _ *Product) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

// InvalidatePOS drops cached POS catalogs, e.g. after a stock item change.
func (s *Service) InvalidatePOS(ctx context.Context) error {
	return s.invalidate(ctx, nil)
}

// POSCatalog returns active products priced for now plus sellable stock items.
func (s *Service) POSCatalog(ctx context.Context) (*POSCatalog, error) {
	now := s.now()
	quote := s.policy.Snapshot(ctx, now)
	day := entity.BusinessDay(now, s.policy.Location())
	key := fmt.Sprintf("%s:%t", day.Format(time.DateOnly), quote.SpecialWindow())

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn(ctx, "pos catalog cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	rows, err := s.repo.ListForPOS(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list products for pos: %w", err)
	}
	items, err := s.sellable.ListSellable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sellable stock items: %w", err)
	}

	catalog := &POSCatalog{
		GeneratedAt:   now.UTC(),
		SpecialWindow: quote.SpecialWindow(),
		Items:         make([]POSItem, 0, len(rows)+len(items)),
	}
	for _, r := range rows {
		price := quote.Price(r.Rate())
		catalog.Items = append(catalog.Items, POSItem{
			ItemType:      documents.ItemProduct,
			ID:            r.ID,
			Name:          r.Name,
			BrandID:       r.BrandID,
			BrandName:     r.BrandName,
			Size:          r.Size,
			Image:         r.Image,
			Price:         r.Price,
			CurrentPrice:  price,
			SpecialActive: quote.SpecialWindow() && r.IsSpecialPricing && r.SpecialPrice != nil,
			Stock:         r.Stock,
		})
	}
	for _, it := range items {
		catalog.Items = append(catalog.Items, POSItem{
			ItemType:     documents.ItemStockItem,
			ID:           it.ID,
			Name:         it.Name,
			Unit:         it.Unit,
			Price:        it.UnitPrice,
			CurrentPrice: it.UnitPrice,
			Stock:        it.Quantity,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, catalog); err != nil {
			logger.Warn(ctx, "pos catalog cache write failed", "error", err)
		}
	}
	return catalog, nil
}
