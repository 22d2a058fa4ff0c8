package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents/order"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"
)

// openStatuses are the orders the kitchen still has to work on.
var openStatuses = []order.Status{order.StatusPending, order.StatusInProgress}

// OrderRepo implements order.Repository.
type OrderRepo struct {
	*BaseDocumentRepo[*order.Order]
}

var _ order.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			ordersTable, orderItemsTable, "order_id", "order_number", "order",
			postgres.ExtractDBColumns[order.Order](),
			func() *order.Order { return &order.Order{} },
		),
	}
}

// Create inserts the order header and its lines.
func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.insert(ctx, o, o.ID, o.OrderNumber, o.Lines)
}

// GetByID returns the order with lines.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"id": orderID}), orderID)
}

// GetForUpdate returns the order with lines and holds its row lock.
func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.get(ctx, r.lockQuery(orderID), orderID)
}

func (r *OrderRepo) lockQuery(orderID id.ID) squirrel.SelectBuilder {
	return r.baseSelect().Where(squirrel.Eq{"id": orderID}).Suffix("FOR UPDATE")
}

func (r *OrderRepo) get(ctx context.Context, q squirrel.SelectBuilder, orderID id.ID) (*order.Order, error) {
	o, err := r.findOne(ctx, q, orderID.String())
	if err != nil {
		return nil, err
	}
	lines, err := r.getLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

// UpdateStatus stores a new status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status order.Status) error {
	sql, args, err := r.Builder().
		Update(ordersTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID.String())
	}
	return nil
}

// paymentQuery increments the advance and derives balance and payment status
// from the new advance in the same statement.
func (r *OrderRepo) paymentQuery(orderID id.ID, amount types.Money) squirrel.UpdateBuilder {
	return r.Builder().
		Update(ordersTable).
		Set("advance_amount", squirrel.Expr("advance_amount + ?", amount)).
		Set("balance_amount", squirrel.Expr("total_amount - (advance_amount + ?)", amount)).
		Set("payment_status", squirrel.Expr(
			"CASE WHEN advance_amount + ? >= total_amount THEN ?::text WHEN advance_amount + ? > 0 THEN ?::text ELSE ?::text END",
			amount, order.PaymentPaid, amount, order.PaymentPartial, order.PaymentPending,
		)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": orderID}).
		Suffix("RETURNING " + strings.Join(r.selectCols, ", "))
}

// AddPayment records an advance payment and returns the updated order with lines.
func (r *OrderRepo) AddPayment(ctx context.Context, orderID id.ID, amount types.Money) (*order.Order, error) {
	sql, args, err := r.paymentQuery(orderID, amount).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	o := &order.Order{}
	if err := pgxscan.Get(ctx, r.querier(ctx), o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("add order payment: %w", err)
	}

	lines, err := r.getLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

func (r *OrderRepo) pendingQuery() squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"status": openStatuses}).
		OrderBy("COALESCE(delivery_date, order_date) ASC", "created_at ASC")
}

// Pending returns pending and in-progress orders, earliest due first.
func (r *OrderRepo) Pending(ctx context.Context) ([]*order.Order, error) {
	sql, args, err := r.pendingQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	orders := []*order.Order{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	return orders, nil
}

// PendingCount counts pending and in-progress orders.
func (r *OrderRepo) PendingCount(ctx context.Context) (int64, error) {
	sql, args, err := r.Builder().
		Select("COUNT(*)").
		From(ordersTable).
		Where(squirrel.Eq{"status": openStatuses}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending orders: %w", err)
	}
	return n, nil
}

func (r *OrderRepo) listQuery(filter order.ListFilter) squirrel.SelectBuilder {
	q := dayRange(r.baseSelect(), "order_date", filter.From, filter.To)
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Customer != "" {
		pattern := "%" + filter.Customer + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"customer_name": pattern},
			squirrel.ILike{"customer_phone": pattern},
		})
	}
	return q
}

// List returns orders without lines, newest first.
func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.Order], error) {
	return r.page(ctx, r.listQuery(filter), "order_date DESC, order_number DESC", filter.Limit, filter.Offset)
}
