package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nkovacs/skinpriced/internal/config"
	"github.com/nkovacs/skinpriced/internal/model"
)

const redisKeyPrefix = "skinpriced:price"

// RedisPrices is the Redis implementation of the durable cache tier.
type RedisPrices struct {
	client *redis.Client
}

// redisRecord is the stored JSON shape.
type redisRecord struct {
	Price     float64   `json:"price"`
	WrittenAt time.Time `json:"written_at"`
}

// NewRedisPrices connects to Redis and verifies the connection.
func NewRedisPrices(ctx context.Context, cfg config.RedisConfig) (*RedisPrices, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisPrices{client: client}, nil
}

func redisKey(key string) string {
	return redisKeyPrefix + ":" + key
}

// Get returns the record for key, reporting absence without error. Staleness
// is judged by the reader, same as the Postgres tier, so records carry their
// write time instead of a Redis TTL.
func (r *RedisPrices) Get(ctx context.Context, key string) (model.CacheRecord, bool, error) {
	data, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CacheRecord{}, false, nil
	}
	if err != nil {
		return model.CacheRecord{}, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.CacheRecord{}, false, fmt.Errorf("decode cached price %q: %w", key, err)
	}

	return model.CacheRecord{Key: key, Price: rec.Price, WrittenAt: rec.WrittenAt}, true, nil
}

// Put upserts the record.
func (r *RedisPrices) Put(ctx context.Context, rec model.CacheRecord) error {
	data, err := json.Marshal(redisRecord{Price: rec.Price, WrittenAt: rec.WrittenAt})
	if err != nil {
		return fmt.Errorf("encode cached price %q: %w", rec.Key, err)
	}

	if err := r.client.Set(ctx, redisKey(rec.Key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", rec.Key, err)
	}
	return nil
}

// Close releases the Redis connection.
func (r *RedisPrices) Close() error {
	return r.client.Close()
}
