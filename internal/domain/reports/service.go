package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/tx"
)

// Service provides report generation operations.
type Service struct {
	repo      Repository
	orders    PendingCounter
	lowStock  LowStocker
	stock     CurrentStocker
	txManager tx.ReadOnlyManager
	loc       *time.Location
	now       func() time.Time
}

// Config wires the reports Service.
type Config struct {
	Repo      Repository
	Orders    PendingCounter
	LowStock  LowStocker
	Stock     CurrentStocker
	TxManager tx.ReadOnlyManager // optional, runs single reports read-only
	Location  *time.Location
	Now       func() time.Time
}

// NewService creates a new reports service.
func NewService(cfg Config) *Service {
	s := &Service{
		repo:      cfg.Repo,
		orders:    cfg.Orders,
		lowStock:  cfg.LowStock,
		stock:     cfg.Stock,
		txManager: cfg.TxManager,
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

func (s *Service) readOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txManager == nil {
		return fn(ctx)
	}
	return s.txManager.ReadOnly(ctx, fn)
}

// dayPeriod covers the business day of d.
func (s *Service) dayPeriod(d time.Time) Period {
	start := entity.BusinessDay(d, s.loc)
	return Period{From: start, To: start.AddDate(0, 0, 1)}
}

// DailySummary totals completed bills of one business day. A zero day
// means today.
func (s *Service) DailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	if day.IsZero() {
		day = s.now()
	}
	p := s.dayPeriod(day)

	var summary DailySummary
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		summary, err = s.repo.SalesSummary(ctx, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get daily summary: %w", err)
	}
	summary.Date = p.From
	return &summary, nil
}

// MonthlySummary returns a per-day breakdown of a calendar month.
func (s *Service) MonthlySummary(ctx context.Context, year, month int) (*MonthlySummary, error) {
	if month < 1 || month > 12 {
		return nil, apperror.NewValidation("month must be between 1 and 12").
			WithDetail("field", "month")
	}
	if year < 2000 || year > 9999 {
		return nil, apperror.NewValidation("year out of range").
			WithDetail("field", "year")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	p := Period{From: start, To: start.AddDate(0, 1, 0)}

	var days []DayRow
	err := s.readOnly(ctx, func(ctx context.Context) error {
		var err error
		days, err = s.repo.SalesByDay(ctx, p, s.loc.String())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get monthly summary: %w", err)
	}

	out := &MonthlySummary{Year: year, Month: month, Days: days}
	for _, d := range days {
		out.TotalBills += d.TotalBills
		out.NetSales = out.NetSales.Add(d.NetSales)
	}
	if out.Days == nil {
		out.Days = []DayRow{}
	}
	return out, nil
}

// MaxRangeDays bounds SalesByRange.
const MaxRangeDays = 366

// SalesByRange totals completed bills of the inclusive days [from, to] and
// breaks them down per day. Zero bounds default to the first of the current
// month and today. Both queries share one read-only snapshot.
func (s *Service) SalesByRange(ctx context.Context, from, to time.Time) (*SalesRange, error) {
	p, err := s.rangePeriod(from, to)
	if err != nil {
		return nil, err
	}
	if p.To.Sub(p.From) > MaxRangeDays*24*time.Hour+time.Hour {
		return nil, apperror.NewValidation(fmt.Sprintf("range must not exceed %d days", MaxRangeDays)).
			WithDetail("field", "toDate")
	}

	out := &SalesRange{From: p.From, To: p.To.AddDate(0, 0, -1)}
	err = s.readOnly(ctx, func(ctx context.Context) error {
		summary, err := s.repo.SalesSummary(ctx, p)
		if err != nil {
			return err
		}
		days, err := s.repo.SalesByDay(ctx, p, s.loc.String())
		if err != nil {
			return err
		}
		out.Summary = summary
		out.Days = days
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get sales by range: %w", err)
	}

	out.Summary.Date = p.From
	if out.Days == nil {
		out.Days = []DayRow{}
	}
	return out, nil
}

// TopItems returns best sellers by quantity within [From, To] days.
func (s *Service) TopItems(ctx context.Context, filter TopItemsFilter) ([]TopItem, error) {
	p, err := s.rangePeriod(filter.From, filter.To)
	if err != nil {
		return nil, err
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	var items []TopItem
	err = s.readOnly(ctx, func(ctx context.Context) error {
		items, err = s.repo.TopItems(ctx, p, filter.Limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get top items: %w", err)
	}
	return items, nil
}

// OrderStats counts orders by status for orders dated within [from, to].
func (s *Service) OrderStats(ctx context.Context, from, to time.Time) ([]OrderStatusStat, error) {
	p, err := s.rangePeriod(from, to)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.OrderStats(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("get order stats: %w", err)
	}
	return stats, nil
}

// rangePeriod turns inclusive days into a period. Zero bounds default to the
// first of the current month and today.
func (s *Service) rangePeriod(from, to time.Time) (Period, error) {
	today := entity.BusinessDay(s.now(), s.loc)
	if from.IsZero() {
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
	}
	if to.IsZero() {
		to = today
	}
	p := Period{From: entity.BusinessDay(from, s.loc), To: entity.BusinessDay(to, s.loc).AddDate(0, 0, 1)}
	if !p.From.Before(p.To) {
		return Period{}, apperror.NewValidation("fromDate must not be after toDate")
	}
	return p, nil
}

// Dashboard gathers today's figures. The queries run concurrently; the first
// failure cancels the rest.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	today := s.dayPeriod(now)
	monthStart := time.Date(today.From.Year(), today.From.Month(), 1, 0, 0, 0, 0, s.loc)

	d := &Dashboard{Date: today.From}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.repo.SalesSummary(gctx, today)
		if err != nil {
			return fmt.Errorf("today summary: %w", err)
		}
		summary.Date = today.From
		d.Today = summary
		return nil
	})
	g.Go(func() error {
		month, err := s.repo.SalesSummary(gctx, Period{From: monthStart, To: today.To})
		if err != nil {
			return fmt.Errorf("month summary: %w", err)
		}
		d.MonthNetSales = month.NetSales
		return nil
	})
	g.Go(func() error {
		n, err := s.orders.PendingCount(gctx)
		if err != nil {
			return fmt.Errorf("pending orders: %w", err)
		}
		d.PendingOrders = n
		return nil
	})
	g.Go(func() error {
		items, err := s.lowStock.LowStock(gctx, nil)
		if err != nil {
			return fmt.Errorf("low stock: %w", err)
		}
		d.LowStock = items
		return nil
	})
	g.Go(func() error {
		rows, err := s.stock.CurrentStock(gctx, today.From)
		if err != nil {
			return fmt.Errorf("current stock: %w", err)
		}
		d.CurrentStock = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}
	return d, nil
}
