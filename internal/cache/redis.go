// Package cache provides shared translation memory backends.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/unicode/norm"
)

const DefaultKeyPrefix = "shapetran:"

// RedisCache keeps finished translations in Redis so several hosts can
// share one translation memory.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`        // e.g. "redis://localhost:6379/0"
	TTL       int    `mapstructure:"ttl"`        // seconds, 0 = no expiration
	KeyPrefix string `mapstructure:"key_prefix"` // default "shapetran:"
}

// NewRedisCache connects to cfg.URL and pings the server.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisCacheFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

func NewRedisCacheFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Key returns the Redis key of a translation. The source text is trimmed
// and NFC-normalised before hashing.
func (c *RedisCache) Key(sourceText, sourceLang, targetLang, backend string) string {
	h := sha256.New()
	for _, part := range []string{norm.NFC.String(strings.TrimSpace(sourceText)), sourceLang, targetLang, backend} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return c.keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *RedisCache) Lookup(ctx context.Context, sourceText, sourceLang, targetLang, backend string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.Key(sourceText, sourceLang, targetLang, backend)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Remember(ctx context.Context, sourceText, sourceLang, targetLang, backend, text string) error {
	return c.client.Set(ctx, c.Key(sourceText, sourceLang, targetLang, backend), text, c.ttl).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
