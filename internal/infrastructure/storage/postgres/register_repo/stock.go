// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/registers/stock"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const (
	stockTable     = "stock"
	stockItemTable = "stock_items"
)

var _ stock.Repository = (*StockRepo)(nil)

var stockColumns = postgres.ExtractDBColumns[stock.Stock]()

// StockRepo implements stock.Repository. Every delta is a single
// "col = col +/- $n" statement so concurrent sales never lose an update.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StockRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func qualified(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

func (r *StockRepo) addStockQuery(productID id.ID, qty types.Quantity, day time.Time, addedBy *id.ID) squirrel.InsertBuilder {
	return r.builder.Insert(stockTable).
		Columns("id", "product_id", "stock_date", "quantity", "quantity_balance", "added_by", "created_at", "updated_at").
		Values(id.New(), productID, day, qty, qty, addedBy, squirrel.Expr("NOW()"), squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (product_id, stock_date) DO UPDATE SET
			quantity = stock.quantity + EXCLUDED.quantity,
			quantity_balance = stock.quantity_balance + EXCLUDED.quantity_balance,
			added_by = COALESCE(EXCLUDED.added_by, stock.added_by),
			updated_at = NOW()
			RETURNING *`)
}

// AddStock upserts the (product, day) row, adding qty to quantity and balance.
func (r *StockRepo) AddStock(ctx context.Context, productID id.ID, qty types.Quantity, day time.Time, addedBy *id.ID) (*stock.Stock, error) {
	sql, args, err := r.addStockQuery(productID, qty, day, addedBy).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build add stock: %w", err)
	}

	var row stock.Stock
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		return nil, fmt.Errorf("add stock: %w", err)
	}
	return &row, nil
}

func (r *StockRepo) reduceStockQuery(productID id.ID, qty types.Quantity, day time.Time) squirrel.InsertBuilder {
	return r.builder.Insert(stockTable).
		Columns("id", "product_id", "stock_date", "quantity", "quantity_balance", "created_at", "updated_at").
		Values(id.New(), productID, day, decimal.Zero, qty.Neg(), squirrel.Expr("NOW()"), squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (product_id, stock_date) DO UPDATE SET
			quantity_balance = stock.quantity_balance + EXCLUDED.quantity_balance,
			updated_at = NOW()`)
}

// ReduceStock subtracts qty from the day's balance. A missing row is created
// with quantity 0 and a negative balance.
func (r *StockRepo) ReduceStock(ctx context.Context, productID id.ID, qty types.Quantity, day time.Time) error {
	sql, args, err := r.reduceStockQuery(productID, qty, day).ToSql()
	if err != nil {
		return fmt.Errorf("build reduce stock: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("reduce stock: %w", err)
	}
	return nil
}

// ClearBalance sets the balance of a row to 0.
func (r *StockRepo) ClearBalance(ctx context.Context, stockID id.ID) (*stock.Stock, error) {
	sql, args, err := r.builder.Update(stockTable).
		Set("quantity_balance", 0).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": stockID}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build clear balance: %w", err)
	}

	var row stock.Stock
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock", stockID.String())
		}
		return nil, fmt.Errorf("clear balance: %w", err)
	}
	return &row, nil
}

func (r *StockRepo) stockItemDeltaQuery(itemID id.ID, delta types.Quantity) squirrel.UpdateBuilder {
	return r.builder.Update(stockItemTable).
		Set("quantity", squirrel.Expr("quantity + ?", delta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": itemID})
}

func (r *StockRepo) applyStockItemDelta(ctx context.Context, itemID id.ID, delta types.Quantity) error {
	sql, args, err := r.stockItemDeltaQuery(itemID, delta).ToSql()
	if err != nil {
		return fmt.Errorf("build stock item delta: %w", err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock item", itemID.String())
	}
	return nil
}

// AddStockItemQuantity increases the running quantity of a stock item.
func (r *StockRepo) AddStockItemQuantity(ctx context.Context, itemID id.ID, qty types.Quantity) error {
	return r.applyStockItemDelta(ctx, itemID, qty)
}

// ReduceStockItemQuantity decreases the running quantity of a stock item.
func (r *StockRepo) ReduceStockItemQuantity(ctx context.Context, itemID id.ID, qty types.Quantity) error {
	return r.applyStockItemDelta(ctx, itemID, qty.Neg())
}

func (r *StockRepo) viewQuery(day time.Time) squirrel.SelectBuilder {
	return r.builder.
		Select(qualified("s", stockColumns)...).
		Columns("p.name AS product_name", "b.name AS brand_name", "p.price").
		From(stockTable+" s").
		Join("products p ON p.id = s.product_id").
		LeftJoin("brands b ON b.id = p.brand_id").
		Where(squirrel.Eq{"s.stock_date": day}).
		OrderBy("b.name ASC NULLS LAST", "p.name ASC")
}

func (r *StockRepo) selectViews(ctx context.Context, q squirrel.SelectBuilder) ([]stock.StockView, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock query: %w", err)
	}
	var rows []stock.StockView
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock: %w", err)
	}
	return rows, nil
}

// CurrentStock lists the day's rows with a positive balance.
func (r *StockRepo) CurrentStock(ctx context.Context, day time.Time) ([]stock.StockView, error) {
	return r.selectViews(ctx, r.viewQuery(day).Where(squirrel.Gt{"s.quantity_balance": 0}))
}

// DayStock lists all rows of the day.
func (r *StockRepo) DayStock(ctx context.Context, day time.Time) ([]stock.StockView, error) {
	return r.selectViews(ctx, r.viewQuery(day))
}

// ProductHistory returns the latest rows of one product, newest first.
func (r *StockRepo) ProductHistory(ctx context.Context, productID id.ID, limit int) ([]stock.Stock, error) {
	sql, args, err := r.builder.
		Select(stockColumns...).
		From(stockTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("stock_date DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var rows []stock.Stock
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("product history: %w", err)
	}
	return rows, nil
}

func (r *StockRepo) reportQuery(from, to time.Time) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"s.product_id",
			"p.name AS product_name",
			"SUM(s.quantity) AS total_added",
			"SUM(s.quantity - s.quantity_balance) AS total_sold",
			"SUM(s.quantity_balance) AS total_remaining",
		).
		From(stockTable+" s").
		Join("products p ON p.id = s.product_id").
		Where(squirrel.GtOrEq{"s.stock_date": from}).
		Where(squirrel.LtOrEq{"s.stock_date": to}).
		GroupBy("s.product_id", "p.name").
		OrderBy("p.name ASC")
}

// Report aggregates rows per product over [from, to].
func (r *StockRepo) Report(ctx context.Context, from, to time.Time) ([]stock.ReportRow, error) {
	sql, args, err := r.reportQuery(from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock report: %w", err)
	}
	var rows []stock.ReportRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stock report: %w", err)
	}
	return rows, nil
}
