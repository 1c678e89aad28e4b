// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/aurelle/aurelle-backend/internal/config"
)

// Catalog caches public catalog reads in Redis. Keys are versioned by a
// generation counter so admin writes invalidate everything with one INCR
// instead of scanning for keys.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

const generationKey = "catalog:gen"

func NewCatalog(cfg config.RedisConfig) (*Catalog, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Catalog{
		client: client,
		ttl:    time.Duration(cfg.CatalogTTL) * time.Second,
	}, nil
}

func (c *Catalog) Close() error {
	return c.client.Close()
}

func (c *Catalog) key(ctx context.Context, suffix string) string {
	gen, err := c.client.Get(ctx, generationKey).Result()
	if err != nil {
		gen = "0"
	}
	return "catalog:" + gen + ":" + suffix
}

// Get unmarshals a cached value into dest. Returns false on miss or any
// redis error; callers fall back to the database.
func (c *Catalog) Get(ctx context.Context, suffix string, dest interface{}) bool {
	data, err := c.client.Get(ctx, c.key(ctx, suffix)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logrus.WithError(err).Warn("Catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logrus.WithError(err).Warn("Catalog cache entry corrupt")
		return false
	}
	return true
}

func (c *Catalog) Set(ctx context.Context, suffix string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(ctx, suffix), data, c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("Catalog cache write failed")
	}
}

// Invalidate bumps the generation counter. Stale entries expire via TTL.
func (c *Catalog) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		logrus.WithError(err).Warn("Catalog cache invalidation failed")
	}
}
