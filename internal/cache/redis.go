package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ephremt/travelbook/config"
	"github.com/ephremt/travelbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	listingsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, listingsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		listingsTTL: listingsTTL,
	}
}

func (c *RedisCache) GetListings(ctx context.Context) ([]domain.Listing, error) {
	data, err := c.client.Get(ctx, listingsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (c *RedisCache) SetListings(ctx context.Context, listings []domain.Listing) error {
	payload, err := json.Marshal(listings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listingsKey(), payload, c.listingsTTL).Err()
}

func (c *RedisCache) InvalidateListings(ctx context.Context) error {
	return c.client.Del(ctx, listingsKey()).Err()
}

func listingsKey() string {
	return "cache:listings"
}
