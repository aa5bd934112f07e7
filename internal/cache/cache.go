package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "spamcheck:pred:"

// Cache stores predicted labels keyed by model fingerprint and input text.
type Cache interface {
	Get(ctx context.Context, fingerprint, text string) (label int64, ok bool, err error)
	Set(ctx context.Context, fingerprint, text string, label int64) error
	Close() error
}

// Key builds the cache key. Texts are hashed so keys stay short and no
// message content is stored in Redis key names.
func Key(fingerprint, text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + fingerprint + ":" + hex.EncodeToString(sum[:])
}

// Redis is a Cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the server at url (a redis:// URL or a bare
// host:port) and verifies the connection.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", opt.Addr, err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, fingerprint, text string) (int64, bool, error) {
	v, err := r.client.Get(ctx, Key(fingerprint, text)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("cache: get: %w", err)
	}
	label, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("cache: corrupt entry %q: %w", v, err)
	}
	return label, true, nil
}

func (r *Redis) Set(ctx context.Context, fingerprint, text string, label int64) error {
	if err := r.client.Set(ctx, Key(fingerprint, text), label, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
