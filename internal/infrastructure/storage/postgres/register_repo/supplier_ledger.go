package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/registers/supplierledger"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const supplierPaymentsTable = "supplier_payments"

var _ supplierledger.Repository = (*SupplierLedgerRepo)(nil)

var paymentColumns = postgres.ExtractDBColumns[supplierledger.Payment]()

// ledgerTotals mirrors supplierledger.Summarize in SQL.
const ledgerTotals = `
	COALESCE(SUM(-sp.amount) FILTER (WHERE sp.amount < 0), 0) AS total_purchases,
	COALESCE(SUM(sp.amount) FILTER (WHERE sp.amount >= 0), 0) AS total_paid,
	GREATEST(COALESCE(SUM(-sp.amount), 0), 0) AS outstanding,
	COUNT(sp.id) AS entry_count`

// SupplierLedgerRepo implements supplierledger.Repository.
type SupplierLedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSupplierLedgerRepo creates a new supplier ledger repository.
func NewSupplierLedgerRepo(txManager *postgres.TxManager) *SupplierLedgerRepo {
	return &SupplierLedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SupplierLedgerRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a ledger entry.
func (r *SupplierLedgerRepo) Create(ctx context.Context, p *supplierledger.Payment) error {
	sql, args, err := r.builder.Insert(supplierPaymentsTable).SetMap(postgres.StructToMap(p)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert payment: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert supplier payment: %w", err)
	}
	return nil
}

func (r *SupplierLedgerRepo) summaryQuery(supplierID id.ID) squirrel.SelectBuilder {
	return r.builder.
		Select().
		Column(squirrel.Expr("?::uuid AS supplier_id", supplierID)).
		Column(ledgerTotals).
		From(supplierPaymentsTable + " sp").
		Where(squirrel.Eq{"sp.supplier_id": supplierID})
}

// Summary totals one supplier's entries.
func (r *SupplierLedgerRepo) Summary(ctx context.Context, supplierID id.ID) (supplierledger.Summary, error) {
	sql, args, err := r.summaryQuery(supplierID).ToSql()
	if err != nil {
		return supplierledger.Summary{}, fmt.Errorf("build summary: %w", err)
	}

	var s supplierledger.Summary
	if err := pgxscan.Get(ctx, r.querier(ctx), &s, sql, args...); err != nil {
		return supplierledger.Summary{}, fmt.Errorf("supplier summary: %w", err)
	}
	return s, nil
}

// Outstanding returns max(0, purchases - payments) for one supplier.
func (r *SupplierLedgerRepo) Outstanding(ctx context.Context, supplierID id.ID) (types.Money, error) {
	s, err := r.Summary(ctx, supplierID)
	if err != nil {
		return types.Money{}, err
	}
	return s.Outstanding, nil
}

func (r *SupplierLedgerRepo) balancesQuery() squirrel.SelectBuilder {
	return r.builder.
		Select("su.id AS supplier_id", "su.name", "su.status", ledgerTotals).
		From("suppliers su").
		LeftJoin(supplierPaymentsTable+" sp ON sp.supplier_id = su.id").
		GroupBy("su.id", "su.name", "su.status").
		OrderBy("su.name ASC")
}

// SuppliersWithBalances lists every supplier with its totals, by name.
func (r *SupplierLedgerRepo) SuppliersWithBalances(ctx context.Context) ([]supplierledger.SupplierBalance, error) {
	sql, args, err := r.balancesQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build balances: %w", err)
	}
	var rows []supplierledger.SupplierBalance
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("suppliers with balances: %w", err)
	}
	return rows, nil
}

// Payments returns a supplier's entries, newest first.
func (r *SupplierLedgerRepo) Payments(ctx context.Context, supplierID id.ID) ([]*supplierledger.Payment, error) {
	sql, args, err := r.builder.
		Select(paymentColumns...).
		From(supplierPaymentsTable).
		Where(squirrel.Eq{"supplier_id": supplierID}).
		OrderBy("payment_date DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build payments: %w", err)
	}
	var rows []*supplierledger.Payment
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("supplier payments: %w", err)
	}
	return rows, nil
}

func (r *SupplierLedgerRepo) rangeQuery(from, to time.Time) squirrel.SelectBuilder {
	return r.builder.
		Select(qualified("sp", paymentColumns)...).
		Column("su.name AS supplier_name").
		From(supplierPaymentsTable+" sp").
		Join("suppliers su ON su.id = sp.supplier_id").
		Where(squirrel.GtOrEq{"sp.payment_date": from}).
		Where(squirrel.LtOrEq{"sp.payment_date": to}).
		OrderBy("sp.payment_date DESC", "sp.created_at DESC")
}

// PaymentsByDateRange returns entries dated within [from, to], newest first.
func (r *SupplierLedgerRepo) PaymentsByDateRange(ctx context.Context, from, to time.Time) ([]supplierledger.PaymentView, error) {
	sql, args, err := r.rangeQuery(from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build payments by range: %w", err)
	}
	var rows []supplierledger.PaymentView
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("payments by range: %w", err)
	}
	return rows, nil
}
