// Package redis provides a Redis-backed embedding cache.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingCache = (*Cache)(nil)

const keyPrefix = "insight:emb:"

// Cache stores embeddings under insight:emb:<model>:<sha256(text)>.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient creates a client from a host:port address or a redis:// URL.
func NewClient(addr string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

// NewCache creates a cache. A non-positive ttl stores entries without expiry.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{client: client, ttl: ttl}
}

// Key returns the cache key for a model and text.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + model + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached vector and whether it was present.
func (c *Cache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, Key(model, text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: get embedding: %w", err)
	}
	if len(data)%4 != 0 {
		return nil, false, fmt.Errorf("redis: corrupt embedding of %d bytes", len(data))
	}
	return decode(data), true, nil
}

// Set stores a vector.
func (c *Cache) Set(ctx context.Context, model, text string, vector []float32) error {
	if err := c.client.Set(ctx, Key(model, text), encode(vector), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set embedding: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

func encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decode(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
