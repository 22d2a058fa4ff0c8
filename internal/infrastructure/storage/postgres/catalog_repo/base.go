// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
	"bakerypos/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides common CRUD operations for catalog entities.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T
}

// NewBaseCatalogRepo creates a new base catalog repository.
func NewBaseCatalogRepo[T any](
	txManager *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// columns returns selectCols qualified with alias.
func (r *BaseCatalogRepo[T]) columns(alias string) []string {
	cols := make([]string, len(r.selectCols))
	for i, c := range r.selectCols {
		cols[i] = alias + "." + c
	}
	return cols
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, e T) error {
	data := postgres.StructToMap(e)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in %s", r.entityName)
	}

	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate(r.entityName, "name", fmt.Sprint(data["name"])).WithCause(err)
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewValidation(r.entityName + " references a missing record").WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// updateQuery builds the optimistic-lock UPDATE for e.
func (r *BaseCatalogRepo[T]) updateQuery(e T) (squirrel.UpdateBuilder, any, int, error) {
	data := postgres.StructToMap(e)
	entityID, ok := data["id"]
	if !ok {
		return squirrel.UpdateBuilder{}, nil, 0, fmt.Errorf("%s has no id column", r.entityName)
	}
	version, ok := data["version"].(int)
	if !ok {
		return squirrel.UpdateBuilder{}, nil, 0, fmt.Errorf("%s has no int version column", r.entityName)
	}

	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		switch col {
		case "id", "version", "created_at", "updated_at":
			continue
		}
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(values).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID, "version": version})
	return q, entityID, version, nil
}

// Update modifies an existing entity with optimistic locking.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, e T) error {
	q, entityID, version, err := r.updateQuery(e)
	if err != nil {
		return err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate(r.entityName, "name", "").WithCause(err)
		}
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entityName, entityID)
	}

	if v, ok := any(e).(interface{ SetVersion(int) }); ok {
		v.SetVersion(version + 1)
	}
	return nil
}

func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

// GetByID retrieves entity by ID regardless of status.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e, err := r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1))
	if apperror.IsNotFound(err) {
		return e, apperror.NewNotFound(r.entityName, entityID.String())
	}
	return e, err
}

// FindOne executes a SELECT query and returns a single entity.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	e := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.entityName, "matching query")
		}
		return e, fmt.Errorf("find %s: %w", r.entityName, err)
	}
	return e, nil
}

// FindAll executes a SELECT query and returns every row.
func (r *BaseCatalogRepo[T]) FindAll(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.entityName, err)
	}
	return items, nil
}

// listQuery applies the common filter to a SELECT, without ordering or paging.
func (r *BaseCatalogRepo[T]) listQuery(q squirrel.SelectBuilder, filter domain.ListFilter, alias string) squirrel.SelectBuilder {
	col := func(c string) string {
		if alias == "" {
			return c
		}
		return alias + "." + c
	}

	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{col("status"): entity.StatusActive})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{col("name"): "%" + filter.Search + "%"})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{col("id"): filter.IDs})
	}
	return q
}

// List retrieves entities with filtering and pagination.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.listQuery(r.baseSelect(), filter, "")

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = paginate(q.OrderBy(orderBy), filter.Limit, filter.Offset)

	items, err := r.FindAll(ctx, q)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

func paginate(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}

// Exists checks if entity exists.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.tableName, err)
	}
	return true, nil
}

// SetStatus flips the lifecycle status.
func (r *BaseCatalogRepo[T]) SetStatus(ctx context.Context, entityID id.ID, status entity.Status) error {
	sql, args, err := r.Builder().
		Update(r.tableName).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set status: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set %s status: %w", r.tableName, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return "name ASC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}
	field = strings.TrimSpace(field)

	for _, col := range r.selectCols {
		if col == field {
			return field + " " + direction, nil
		}
	}
	return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
}
