package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightgate/config"
	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps flight-search results for a short TTL. Seat counts in a
// cached page can lag behind the store by up to the TTL; the booking
// transaction itself never consults the cache.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	ttl := time.Duration(cfg.SearchCacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: ttl,
	}
}

func (c *RedisCache) GetSearch(ctx context.Context, filter domain.SearchFilter) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, searchKey(filter)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, filter domain.SearchFilter, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(filter), payload, c.searchTTL).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func searchKey(filter domain.SearchFilter) string {
	return fmt.Sprintf("cache:search:%s:%s:%s", filter.Origin, filter.Destination, filter.Date)
}
