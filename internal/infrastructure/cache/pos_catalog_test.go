package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/id"
	"bakerypos/internal/domain/catalogs/product"
	"bakerypos/internal/domain/documents"
)

func newTestCache(t *testing.T) (*POSCatalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPOSCatalogCache(client, time.Minute), mr
}

func sampleCatalog() *product.POSCatalog {
	return &product.POSCatalog{
		GeneratedAt:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		SpecialWindow: true,
		Items: []product.POSItem{{
			ItemType:      documents.ItemProduct,
			ID:            id.New(),
			Name:          "Seeni sambol bun",
			Price:         decimal.NewFromInt(120),
			CurrentPrice:  decimal.NewFromInt(100),
			SpecialActive: true,
			Stock:         decimal.NewFromInt(14),
		}},
	}
}

func TestPOSCatalogCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "2026-03-10:true")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleCatalog()
	require.NoError(t, c.Set(ctx, "2026-03-10:true", want))

	got, ok, err := c.Get(ctx, "2026-03-10:true")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Items[0].ID, got.Items[0].ID)
	assert.True(t, want.Items[0].CurrentPrice.Equal(got.Items[0].CurrentPrice))
	assert.True(t, got.SpecialWindow)
}

func TestPOSCatalogCache_InvalidateHidesOldEntries(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "2026-03-10:false", sampleCatalog()))
	require.NoError(t, c.Invalidate(ctx))

	_, ok, err := c.Get(ctx, "2026-03-10:false")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPOSCatalogCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "2026-03-10:false", sampleCatalog()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "2026-03-10:false")
	require.NoError(t, err)
	assert.False(t, ok)
}
