// internal/cache/metrics_cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/aguavida/kpi-backend/internal/config"
	"github.com/aguavida/kpi-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	metricsKeyPrefix  = "kpi:dashboard"
	scanBatchSize     = 100
	defaultMetricsTTL = time.Minute
)

// MetricsCache stores computed dashboard metrics per reference date. The
// pipeline is deterministic for a given day's inputs, so a short TTL is
// enough to absorb polling refreshes.
type MetricsCache interface {
	Get(ctx context.Context, referenceDate time.Time) (*domain.Metrics, bool, error)
	Set(ctx context.Context, referenceDate time.Time, metrics *domain.Metrics) error
	InvalidateAll(ctx context.Context) error
}

type redisMetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopMetricsCache struct{}

func NewMetricsCache(cfg config.CacheConfig) (MetricsCache, error) {
	if !cfg.Enabled {
		return &noopMetricsCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.DashboardTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultMetricsTTL
	}

	return &redisMetricsCache{client: client, ttl: ttl}, nil
}

func NewNoopMetricsCache() MetricsCache {
	return &noopMetricsCache{}
}

func (c *redisMetricsCache) Get(ctx context.Context, referenceDate time.Time) (*domain.Metrics, bool, error) {
	payload, err := c.client.Get(ctx, metricsKey(referenceDate)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var metrics domain.Metrics
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return nil, false, fmt.Errorf("decode metrics cache: %w", err)
	}
	return &metrics, true, nil
}

func (c *redisMetricsCache) Set(ctx context.Context, referenceDate time.Time, metrics *domain.Metrics) error {
	payload, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode metrics cache: %w", err)
	}

	if err := c.client.Set(ctx, metricsKey(referenceDate), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisMetricsCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, metricsKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (n *noopMetricsCache) Get(ctx context.Context, referenceDate time.Time) (*domain.Metrics, bool, error) {
	return nil, false, nil
}

func (n *noopMetricsCache) Set(ctx context.Context, referenceDate time.Time, metrics *domain.Metrics) error {
	return nil
}

func (n *noopMetricsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func metricsKey(referenceDate time.Time) string {
	return fmt.Sprintf("%s:%s", metricsKeyPrefix, referenceDate.Format("2006-01-02"))
}
