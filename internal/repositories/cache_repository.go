package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheRepository keeps JSON blobs (parsed metadata, source configs) in
// redis so repeat pipeline stages skip the disk round trip.
type CacheRepository struct {
	rdb *redis.Client
}

func NewCacheRepository(rdb *redis.Client) *CacheRepository {
	return &CacheRepository{rdb: rdb}
}

const (
	ParsedMetaKeyPrefix   = "parsed:"
	SourceConfigKeyPrefix = "source:"

	defaultCacheTTL = 24 * time.Hour
)

func (r *CacheRepository) StoreJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, data, defaultCacheTTL).Err()
}

// GetJSON unmarshals the cached value into dest. It returns false without
// an error on a cache miss.
func (r *CacheRepository) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
