package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the requested key is not cached
var ErrCacheMiss = errors.New("cache miss")

// DashboardCache caches the admin dashboard summary payload. Order writes
// invalidate it so the dashboard never serves stale order counts.
type DashboardCache interface {
	// Get returns the cached payload or ErrCacheMiss
	Get(ctx context.Context) ([]byte, error)

	// Set stores the payload with a TTL
	Set(ctx context.Context, payload []byte, ttl time.Duration) error

	// Invalidate drops the cached payload
	Invalidate(ctx context.Context) error
}

const dashboardKey = "dashboard:summary"

// RedisDashboardCache implements DashboardCache on Redis. Suitable for
// distributed deployments where multiple instances share the cache.
type RedisDashboardCache struct {
	client *redis.Client
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisDashboardCache creates a Redis-backed dashboard cache
func NewRedisDashboardCache(cfg RedisConfig) (*RedisDashboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDashboardCache{client: client}, nil
}

// NewRedisDashboardCacheWithClient creates a cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisDashboardCacheWithClient(client *redis.Client) *RedisDashboardCache {
	return &RedisDashboardCache{client: client}
}

// Get returns the cached payload or ErrCacheMiss
func (c *RedisDashboardCache) Get(ctx context.Context) ([]byte, error) {
	payload, err := c.client.Get(ctx, dashboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard cache: %w", err)
	}
	return payload, nil
}

// Set stores the payload with a TTL
func (c *RedisDashboardCache) Set(ctx context.Context, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, dashboardKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write dashboard cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached payload
func (c *RedisDashboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, dashboardKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisDashboardCache) Close() error {
	return c.client.Close()
}

var _ DashboardCache = (*RedisDashboardCache)(nil)

// InMemoryDashboardCache implements DashboardCache in process memory. Used
// for single-instance deployments and tests.
type InMemoryDashboardCache struct {
	mu        sync.RWMutex
	payload   []byte
	expiresAt time.Time
}

// NewInMemoryDashboardCache creates an in-memory dashboard cache
func NewInMemoryDashboardCache() *InMemoryDashboardCache {
	return &InMemoryDashboardCache{}
}

// Get returns the cached payload or ErrCacheMiss
func (c *InMemoryDashboardCache) Get(_ context.Context) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.payload == nil || time.Now().After(c.expiresAt) {
		return nil, ErrCacheMiss
	}

	payload := make([]byte, len(c.payload))
	copy(payload, c.payload)
	return payload, nil
}

// Set stores the payload with a TTL
func (c *InMemoryDashboardCache) Set(_ context.Context, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.payload = make([]byte, len(payload))
	copy(c.payload, payload)
	c.expiresAt = time.Now().Add(ttl)
	return nil
}

// Invalidate drops the cached payload
func (c *InMemoryDashboardCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.payload = nil
	return nil
}

var _ DashboardCache = (*InMemoryDashboardCache)(nil)