package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bakerypos/internal/domain/catalogs/product"
)

const posVersionKey = "pos:catalog:version"

// POSCatalogCache implements product.POSCache. Entries are keyed under a
// version counter, so Invalidate is a single INCR and stale entries age out
// through their TTL.
type POSCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ product.POSCache = (*POSCatalogCache)(nil)

// NewPOSCatalogCache creates the cache. ttl must be positive.
func NewPOSCatalogCache(client *redis.Client, ttl time.Duration) *POSCatalogCache {
	return &POSCatalogCache{client: client, ttl: ttl}
}

func (c *POSCatalogCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, posVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read catalog version: %w", err)
	}
	return ver, nil
}

func (c *POSCatalogCache) entryKey(ctx context.Context, key string) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("pos:catalog:%d:%s", ver, key), nil
}

// Get returns the cached catalog for key, if any.
func (c *POSCatalogCache) Get(ctx context.Context, key string) (*product.POSCatalog, bool, error) {
	k, err := c.entryKey(ctx, key)
	if err != nil {
		return nil, false, err
	}

	payload, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get pos catalog: %w", err)
	}

	var catalog product.POSCatalog
	if err := json.Unmarshal(payload, &catalog); err != nil {
		return nil, false, fmt.Errorf("decode pos catalog: %w", err)
	}
	return &catalog, true, nil
}

// Set stores catalog under key for the cache TTL.
func (c *POSCatalogCache) Set(ctx context.Context, key string, catalog *product.POSCatalog) error {
	k, err := c.entryKey(ctx, key)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("encode pos catalog: %w", err)
	}
	if err := c.client.Set(ctx, k, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set pos catalog: %w", err)
	}
	return nil
}

// Invalidate drops every cached catalog.
func (c *POSCatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, posVersionKey).Err(); err != nil {
		return fmt.Errorf("bump catalog version: %w", err)
	}
	return nil
}
