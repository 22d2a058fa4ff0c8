package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents/bill"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const (
	billsTable     = "bills"
	billItemsTable = "bill_items"
)

// BillRepo implements bill.Repository.
type BillRepo struct {
	*BaseDocumentRepo[*bill.Bill]
}

var _ bill.Repository = (*BillRepo)(nil)

// NewBillRepo creates a new bill repository.
func NewBillRepo(txManager *postgres.TxManager) *BillRepo {
	return &BillRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			billsTable, billItemsTable, "bill_id", "bill_number", "bill",
			postgres.ExtractDBColumns[bill.Bill](),
			func() *bill.Bill { return &bill.Bill{} },
		),
	}
}

// Create inserts the bill header and its lines.
func (r *BillRepo) Create(ctx context.Context, b *bill.Bill) error {
	return r.insert(ctx, b, b.ID, b.BillNumber, b.Lines)
}

// GetByID returns the bill with lines.
func (r *BillRepo) GetByID(ctx context.Context, billID id.ID) (*bill.Bill, error) {
	b, err := r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": billID}), billID.String())
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, b)
}

// GetByNumber returns the bill with lines.
func (r *BillRepo) GetByNumber(ctx context.Context, number string) (*bill.Bill, error) {
	b, err := r.findOne(ctx, r.baseSelect().Where(squirrel.Eq{"bill_number": number}), number)
	if err != nil {
		return nil, err
	}
	return r.withLines(ctx, b)
}

func (r *BillRepo) withLines(ctx context.Context, b *bill.Bill) (*bill.Bill, error) {
	lines, err := r.getLines(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Lines = lines
	return b, nil
}

// ExistsByNumber reports whether a bill carries number.
func (r *BillRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	return r.existsBy(ctx, "bill_number", number)
}

func (r *BillRepo) statusQuery(billID id.ID, from, to bill.Status) squirrel.UpdateBuilder {
	return r.Builder().
		Update(billsTable).
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": billID}).
		Where(squirrel.Eq{"status": from})
}

// UpdateStatus moves a bill from one status to another.
func (r *BillRepo) UpdateStatus(ctx context.Context, billID id.ID, from, to bill.Status) (bool, error) {
	sql, args, err := r.statusQuery(billID, from, to).ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update bill status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	exists, err := r.existsBy(ctx, "id", billID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, apperror.NewNotFound("bill", billID.String())
	}
	return false, nil
}

func (r *BillRepo) listQuery(filter bill.ListFilter) squirrel.SelectBuilder {
	q := dayRange(r.baseSelect(), "created_at", filter.From, filter.To)
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.CashierID != nil {
		q = q.Where(squirrel.Eq{"cashier_id": *filter.CashierID})
	}
	return q
}

// List returns bills without lines, newest first.
func (r *BillRepo) List(ctx context.Context, filter bill.ListFilter) (domain.ListResult[*bill.Bill], error) {
	return r.page(ctx, r.listQuery(filter), "created_at DESC, bill_number DESC", filter.Limit, filter.Offset)
}
