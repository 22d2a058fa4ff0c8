// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/infrastructure/storage/postgres"
)

// lineColumns are the line item columns shared by bill_items and order_items,
// in COPY order after the owning document id.
var lineColumns = postgres.ExtractDBColumns[documents.LineItem]()

// BaseDocumentRepo provides the header/lines plumbing shared by bills and orders.
type BaseDocumentRepo[T any] struct {
	txManager  *postgres.TxManager
	batch      *postgres.BatchInserter
	tableName  string
	linesTable string
	ownerCol   string // foreign key column of linesTable
	numberCol  string
	entityName string
	selectCols []string
	newFn      func() T
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[T any](
	txManager *postgres.TxManager,
	tableName, linesTable, ownerCol, numberCol, entityName string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txManager:  txManager,
		batch:      postgres.NewBatchInserter(txManager),
		tableName:  tableName,
		linesTable: linesTable,
		ownerCol:   ownerCol,
		numberCol:  numberCol,
		entityName: entityName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder.
func (r *BaseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseDocumentRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// insertQuery builds the header INSERT from the entity's db tags.
func (r *BaseDocumentRepo[T]) insertQuery(e T) (squirrel.InsertBuilder, error) {
	data := postgres.StructToMap(e)
	if len(data) == 0 {
		return squirrel.InsertBuilder{}, fmt.Errorf("no db tags found in %s", r.entityName)
	}

	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}
	return r.Builder().Insert(r.tableName).SetMap(values), nil
}

// insert stores the header and its lines. Both must land in the same
// transaction, so callers run it inside RunInTransaction.
func (r *BaseDocumentRepo[T]) insert(ctx context.Context, e T, docID id.ID, number string, lines []documents.LineItem) error {
	q, err := r.insertQuery(e)
	if err != nil {
		return err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewNumberConflict(r.entityName, number).WithCause(err)
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewValidation(r.entityName + " references a missing record").WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	if _, err := r.batch.CopyFromSlice(ctx, r.linesTable, r.lineCopyColumns(), lineRows(docID, lines)); err != nil {
		return fmt.Errorf("insert %s: %w", r.linesTable, err)
	}
	return nil
}

func (r *BaseDocumentRepo[T]) lineCopyColumns() []string {
	return append([]string{r.ownerCol}, lineColumns...)
}

// lineRows flattens lines into COPY rows matching lineCopyColumns.
func lineRows(docID id.ID, lines []documents.LineItem) [][]any {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		data := postgres.StructToMap(&l)
		row := make([]any, 0, len(lineColumns)+1)
		row = append(row, docID)
		for _, col := range lineColumns {
			row = append(row, data[col])
		}
		rows = append(rows, row)
	}
	return rows
}

func (r *BaseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

// findOne scans a single header row. notFoundKey names the lookup in the error.
func (r *BaseDocumentRepo[T]) findOne(ctx context.Context, q squirrel.SelectBuilder, notFoundKey string) (T, error) {
	e := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.entityName, notFoundKey)
		}
		return e, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return e, nil
}

func (r *BaseDocumentRepo[T]) linesQuery(docID id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(lineColumns...).
		From(r.linesTable).
		Where(squirrel.Eq{r.ownerCol: docID}).
		OrderBy("line_number")
}

// getLines loads the lines of one document in line order.
func (r *BaseDocumentRepo[T]) getLines(ctx context.Context, docID id.ID) ([]documents.LineItem, error) {
	sql, args, err := r.linesQuery(docID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []documents.LineItem
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get %s: %w", r.linesTable, err)
	}
	return lines, nil
}

// existsBy reports whether a header row has col = value.
func (r *BaseDocumentRepo[T]) existsBy(ctx context.Context, col string, value any) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{col: value}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var exists bool
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", r.tableName, err)
	}
	return exists, nil
}

// maxSequenceQuery selects the highest numeric suffix among numbers that
// are exactly stem followed by digits, or 0 when there are none.
func (r *BaseDocumentRepo[T]) maxSequenceQuery(stem string) squirrel.SelectBuilder {
	return r.Builder().
		Select(fmt.Sprintf("COALESCE(MAX(CAST(SUBSTRING(%s FROM %d) AS BIGINT)), 0)", r.numberCol, len(stem)+1)).
		From(r.tableName).
		Where(squirrel.Expr(r.numberCol+" ~ ?", "^"+regexp.QuoteMeta(stem)+"[0-9]+$"))
}

// MaxSequence returns the highest sequence already used under stem.
func (r *BaseDocumentRepo[T]) MaxSequence(ctx context.Context, stem string) (int64, error) {
	sql, args, err := r.maxSequenceQuery(stem).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var seq int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("max %s sequence: %w", r.entityName, err)
	}
	return seq, nil
}

// page counts q and returns one page of it ordered by orderBy.
func (r *BaseDocumentRepo[T]) page(ctx context.Context, q squirrel.SelectBuilder, orderBy string, limit, offset int) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: limit, Offset: offset}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	q = q.OrderBy(orderBy)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	return result, nil
}

// dayRange restricts col to [from, to] where to is an inclusive calendar day.
func dayRange(q squirrel.SelectBuilder, col string, from, to *time.Time) squirrel.SelectBuilder {
	if from != nil {
		q = q.Where(squirrel.GtOrEq{col: *from})
	}
	if to != nil {
		q = q.Where(squirrel.Lt{col: to.AddDate(0, 0, 1)})
	}
	return q
}
