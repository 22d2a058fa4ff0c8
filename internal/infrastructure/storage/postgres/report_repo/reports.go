// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakerypos/internal/domain/documents/bill"
	"bakerypos/internal/domain/reports"
	"bakerypos/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// completedIn restricts a bills alias to completed bills created in p.
func completedIn(q squirrel.SelectBuilder, alias string, p reports.Period) squirrel.SelectBuilder {
	return q.Where(squirrel.Eq{alias + ".status": bill.StatusCompleted}).
		Where(squirrel.GtOrEq{alias + ".created_at": p.From}).
		Where(squirrel.Lt{alias + ".created_at": p.To})
}

const itemsSoldExpr = `(SELECT COALESCE(SUM(bi.quantity), 0)
	FROM bill_items bi JOIN bills ib ON ib.id = bi.bill_id
	WHERE ib.status = ? AND ib.created_at >= ? AND ib.created_at < ?) AS items_sold`

func (r *ReportRepo) summaryQuery(p reports.Period) squirrel.SelectBuilder {
	q := r.builder.
		Select(
			"COUNT(*) AS total_bills",
			"COALESCE(SUM(b.subtotal), 0) AS gross_sales",
			"COALESCE(SUM(b.discount_amount), 0) AS total_discount",
			"COALESCE(SUM(b.total), 0) AS net_sales",
		).
		Column(squirrel.Expr(itemsSoldExpr, bill.StatusCompleted, p.From, p.To)).
		From("bills b")
	return completedIn(q, "b", p)
}

// SalesSummary totals completed bills in p.
func (r *ReportRepo) SalesSummary(ctx context.Context, p reports.Period) (reports.DailySummary, error) {
	summary := reports.DailySummary{Date: p.From}

	sql, args, err := r.summaryQuery(p).ToSql()
	if err != nil {
		return summary, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &summary, sql, args...); err != nil {
		return summary, fmt.Errorf("sales summary: %w", err)
	}
	return summary, nil
}

func (r *ReportRepo) byDayQuery(p reports.Period, tz string) squirrel.SelectBuilder {
	q := r.builder.
		Select().
		Column(squirrel.Expr("(b.created_at AT TIME ZONE ?)::date AS day", tz)).
		Columns(
			"COUNT(*) AS total_bills",
			"COALESCE(SUM(b.total), 0) AS net_sales",
		).
		From("bills b").
		GroupBy("day").
		OrderBy("day ASC")
	return completedIn(q, "b", p)
}

// SalesByDay groups completed bills in p by local calendar day in tz.
// Days without sales are absent.
func (r *ReportRepo) SalesByDay(ctx context.Context, p reports.Period, tz string) ([]reports.DayRow, error) {
	sql, args, err := r.byDayQuery(p, tz).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := []reports.DayRow{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sales by day: %w", err)
	}
	return rows, nil
}

func (r *ReportRepo) topItemsQuery(p reports.Period, limit int) squirrel.SelectBuilder {
	q := r.builder.
		Select(
			"bi.item_type",
			"bi.item_id",
			"MAX(bi.item_name) AS item_name",
			"SUM(bi.quantity) AS total_quantity",
			"SUM(bi.total_price) AS total_revenue",
			"COUNT(DISTINCT bi.bill_id) AS times_sold",
		).
		From("bill_items bi").
		Join("bills b ON b.id = bi.bill_id").
		GroupBy("bi.item_type", "bi.item_id").
		OrderBy("total_quantity DESC", "total_revenue DESC")
	q = completedIn(q, "b", p)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

// TopItems ranks sold items in p by quantity.
func (r *ReportRepo) TopItems(ctx context.Context, p reports.Period, limit int) ([]reports.TopItem, error) {
	sql, args, err := r.topItemsQuery(p, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []reports.TopItem{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	return items, nil
}

func (r *ReportRepo) orderStatsQuery(p reports.Period) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"o.status",
			"COUNT(*) AS count",
			"COALESCE(SUM(o.total_amount), 0) AS total_value",
		).
		From("orders o").
		Where(squirrel.GtOrEq{"o.order_date": p.From}).
		Where(squirrel.Lt{"o.order_date": p.To}).
		GroupBy("o.status").
		OrderBy("o.status ASC")
}

// OrderStats counts orders placed in p per status.
func (r *ReportRepo) OrderStats(ctx context.Context, p reports.Period) ([]reports.OrderStatusStat, error) {
	sql, args, err := r.orderStatsQuery(p).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	stats := []reports.OrderStatusStat{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &stats, sql, args...); err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return stats, nil
}
