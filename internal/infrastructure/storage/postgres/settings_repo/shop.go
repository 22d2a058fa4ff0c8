// Package settings_repo provides PostgreSQL storage for single-row settings.
package settings_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/domain/shop"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const shopProfileTable = "shop_profile"

var profileColumns = postgres.ExtractDBColumns[shop.Profile]()

// ShopProfileRepo implements shop.Repository.
type ShopProfileRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ shop.Repository = (*ShopProfileRepo)(nil)

// NewShopProfileRepo creates a new shop profile repository.
func NewShopProfileRepo(txManager *postgres.TxManager) *ShopProfileRepo {
	return &ShopProfileRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the stored profile.
func (r *ShopProfileRepo) Get(ctx context.Context) (*shop.Profile, error) {
	sql, args, err := r.builder.Select(profileColumns...).From(shopProfileTable).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	p := &shop.Profile{}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("shop profile", "")
		}
		return nil, fmt.Errorf("get shop profile: %w", err)
	}
	return p, nil
}

func (r *ShopProfileRepo) insertQuery(p *shop.Profile) squirrel.InsertBuilder {
	return r.builder.Insert(shopProfileTable).
		SetMap(map[string]any{
			"id":             p.ID,
			"name":           p.Name,
			"address":        p.Address,
			"phone":          p.Phone,
			"email":          p.Email,
			"currency":       p.Currency,
			"receipt_footer": p.ReceiptFooter,
			"version":        1,
			"updated_at":     p.UpdatedAt,
		}).
		Suffix("ON CONFLICT DO NOTHING")
}

func (r *ShopProfileRepo) updateQuery(p *shop.Profile) squirrel.UpdateBuilder {
	return r.builder.Update(shopProfileTable).
		Set("name", p.Name).
		Set("address", p.Address).
		Set("phone", p.Phone).
		Set("email", p.Email).
		Set("currency", p.Currency).
		Set("receipt_footer", p.ReceiptFooter).
		Set("updated_at", p.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"version": p.Version})
}

// Save inserts the first profile or updates it under optimistic locking.
// The table holds at most one row, so a lost insert race also reports a
// concurrent modification.
func (r *ShopProfileRepo) Save(ctx context.Context, p *shop.Profile) error {
	var (
		sql  string
		args []any
		err  error
	)
	if p.Version == 0 {
		sql, args, err = r.insertQuery(p).ToSql()
	} else {
		sql, args, err = r.updateQuery(p).ToSql()
	}
	if err != nil {
		return fmt.Errorf("build save: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("save shop profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("shop profile", p.ID)
	}

	p.Version++
	return nil
}
