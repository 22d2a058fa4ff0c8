package settings_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/id"
	"bakerypos/internal/domain/shop"
)

func TestProfileColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"id", "name", "address", "phone", "email", "currency", "receipt_footer", "version", "updated_at"},
		profileColumns)
}

func TestShopProfileRepo_InsertIgnoresSecondRow(t *testing.T) {
	r := NewShopProfileRepo(nil)
	p := &shop.Profile{ID: id.New(), Name: "Corner Bakery", Currency: "Rs.", UpdatedAt: time.Now()}

	sql, args, err := r.insertQuery(p).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO shop_profile")
	assert.Contains(t, sql, "ON CONFLICT DO NOTHING")
	assert.Contains(t, args, "Corner Bakery")
	assert.Contains(t, args, 1)
}

func TestShopProfileRepo_UpdateGuardsVersion(t *testing.T) {
	r := NewShopProfileRepo(nil)
	p := &shop.Profile{Name: "Corner Bakery", Currency: "Rs.", Version: 4}

	sql, args, err := r.updateQuery(p).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "UPDATE shop_profile SET name = $1")
	assert.Contains(t, sql, "version = version + 1")
	assert.Contains(t, sql, "WHERE version = $8")
	assert.Equal(t, 4, args[len(args)-1])
}
