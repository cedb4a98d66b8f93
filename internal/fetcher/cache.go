package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/IshaanNene/PromoScrape/internal/config"
	"github.com/IshaanNene/PromoScrape/internal/types"
)

const cacheKeyPrefix = "promoscrape:markup:"

// RedisClient is the subset of redis operations used by the markup cache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// CachedFetcher serves markup from redis when present and stores fresh
// fetches there. Cache faults never fail a fetch.
type CachedFetcher struct {
	next   Fetcher
	client RedisClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCachedFetcher wraps next with a cache at cfg.RedisAddr.
func NewRedisCachedFetcher(next Fetcher, cfg config.CacheConfig, logger *slog.Logger) *CachedFetcher {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return NewCachedFetcher(next, client, cfg.TTL, logger)
}

// NewCachedFetcher wraps next with a cache backed by client.
func NewCachedFetcher(next Fetcher, client RedisClient, ttl time.Duration, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "markup_cache"),
	}
}

// Fetch returns cached markup for the request URL, or delegates and caches
// the result.
func (c *CachedFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	key := cacheKey(req.URLString())

	body, err := c.lookup(ctx, key)
	if err == nil {
		c.logger.Debug("cache hit", "url", req.URLString())
		resp := types.NewBrowserResponse(req, body, req.URLString(), 0)
		resp.FromCache = true
		return resp, nil
	}
	if !errors.Is(err, types.ErrCacheMiss) {
		c.logger.Warn("cache lookup failed", "url", req.URLString(), "error", err)
	}

	resp, err := c.next.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, resp.Body, c.ttl).Err(); err != nil {
		c.logger.Warn("cache store failed", "url", req.URLString(), "error", err)
	}
	return resp, nil
}

func (c *CachedFetcher) lookup(ctx context.Context, key string) ([]byte, error) {
	body, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, types.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, types.ErrCacheMiss
	}
	return body, nil
}

// Close closes the wrapped fetcher and the redis client.
func (c *CachedFetcher) Close() error {
	return errors.Join(c.next.Close(), c.client.Close())
}

// Type reports the wrapped fetcher's type.
func (c *CachedFetcher) Type() string {
	return c.next.Type()
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
