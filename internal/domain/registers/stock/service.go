package stock

import (
	"context"
	"fmt"
	"time"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents"
	"bakerypos/pkg/logger"
)

// Service is the inventory ledger. Bill and order engines call the reduce
// operations inside their own transaction; the nested RunInTransaction joins it.
type Service struct {
	repo      Repository
	products  ProductChecker
	txManager tx.Manager
	events    domain.EventPublisher
	loc       *time.Location
	now       func() time.Time
}

var _ documents.InventoryReducer = (*Service)(nil)

// Config wires the Service.
type Config struct {
	Repo      Repository
	Products  ProductChecker
	TxManager tx.Manager
	Events    domain.EventPublisher // optional
	Location  *time.Location
	Now       func() time.Time
}

// NewService creates a new stock ledger service.
func NewService(cfg Config) *Service {
	s := &Service{
		repo:      cfg.Repo,
		products:  cfg.Products,
		txManager: cfg.TxManager,
		events:    cfg.Events,
		loc:       cfg.Location,
		now:       cfg.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Today returns the current business day.
func (s *Service) Today() time.Time {
	return entity.BusinessDay(s.now(), s.loc)
}

func (s *Service) day(d time.Time) time.Time {
	if d.IsZero() {
		return s.Today()
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
}

func positive(qty types.Quantity) error {
	if !qty.IsPositive() {
		return apperror.NewValidation("quantity must be greater than zero").
			WithDetail("field", "quantity").
			WithDetail("value", qty.String())
	}
	return nil
}

// AddStock records a bake for a product on a day (today when zero).
func (s *Service) AddStock(ctx context.Context, productID id.ID, qty types.Quantity, day time.Time, addedBy *id.ID) (*Stock, error) {
	if err := positive(qty); err != nil {
		return nil, err
	}

	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, apperror.NewNotFound("product", productID.String())
	}

	day = s.day(day)
	var row *Stock
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		row, err = s.repo.AddStock(ctx, productID, qty, day, addedBy)
		if err != nil {
			return fmt.Errorf("add stock: %w", err)
		}
		if s.events == nil {
			return nil
		}
		return s.events.Publish(ctx, domain.Event{
			AggregateType: "stock",
			AggregateID:   row.ID,
			EventType:     domain.EventStockAdded,
			Payload:       row,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock added",
		"product_id", productID,
		"quantity", qty.String(),
		"stock_date", day.Format(time.DateOnly),
		"balance", row.QuantityBalance.String(),
	)
	return row, nil
}

// ReduceStock subtracts a sale from the product's daily balance.
// No floor: oversale leaves a negative balance.
func (s *Service) ReduceStock(ctx context.Context, productID id.ID, qty types.Quantity, day time.Time) error {
	if err := positive(qty); err != nil {
		return err
	}

	day = s.day(day)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.ReduceStock(ctx, productID, qty, day)
	})
	if err != nil {
		return fmt.Errorf("reduce stock: %w", err)
	}

	logger.Debug(ctx, "stock reduced",
		"product_id", productID,
		"quantity", qty.String(),
		"stock_date", day.Format(time.DateOnly),
	)
	return nil
}

// ClearStockBalance zeroes the balance of a row, used at day end for unsold
// perishables.
func (s *Service) ClearStockBalance(ctx context.Context, stockID id.ID) (*Stock, error) {
	var row *Stock
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		row, err = s.repo.ClearBalance(ctx, stockID)
		if err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		return s.events.Publish(ctx, domain.Event{
			AggregateType: "stock",
			AggregateID:   stockID,
			EventType:     domain.EventStockBalanceClear,
			Payload:       row,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock balance cleared", "stock_id", stockID, "product_id", row.ProductID)
	return row, nil
}

// AddStockItemQuantity increases a stock item's running quantity.
func (s *Service) AddStockItemQuantity(ctx context.Context, itemID id.ID, qty types.Quantity) error {
	if err := positive(qty); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.AddStockItemQuantity(ctx, itemID, qty)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock item quantity added", "stock_item_id", itemID, "quantity", qty.String())
	return nil
}

// ReduceStockItemQuantity decreases a stock item's running quantity.
// The quantity may go negative.
func (s *Service) ReduceStockItemQuantity(ctx context.Context, itemID id.ID, qty types.Quantity) error {
	if err := positive(qty); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.ReduceStockItemQuantity(ctx, itemID, qty)
	})
	if err != nil {
		return err
	}

	logger.Debug(ctx, "stock item quantity reduced", "stock_item_id", itemID, "quantity", qty.String())
	return nil
}

// CurrentStock lists products with stock left on the day.
func (s *Service) CurrentStock(ctx context.Context, day time.Time) ([]StockView, error) {
	return s.repo.CurrentStock(ctx, s.day(day))
}

// DayStock lists every stock row of the day.
func (s *Service) DayStock(ctx context.Context, day time.Time) ([]StockView, error) {
	return s.repo.DayStock(ctx, s.day(day))
}

// ProductHistory returns the recent daily rows of a product.
func (s *Service) ProductHistory(ctx context.Context, productID id.ID, limit int) ([]Stock, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.repo.ProductHistory(ctx, productID, limit)
}

// StockReport aggregates added, sold and remaining quantities per product.
func (s *Service) StockReport(ctx context.Context, from, to time.Time) ([]ReportRow, error) {
	from, to = s.day(from), s.day(to)
	if to.Before(from) {
		return nil, apperror.NewValidation("'to' must not be before 'from'").
			WithDetail("from", from.Format(time.DateOnly)).
			WithDetail("to", to.Format(time.DateOnly))
	}
	return s.repo.Report(ctx, from, to)
}
