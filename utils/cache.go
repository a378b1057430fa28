// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"clipbook/config"

	"github.com/go-redis/redis/v8"
)

// DedupCacheClient tracks webhook message ids so Meta redeliveries are
// processed at most once.
var DedupCacheClient *redis.Client

// InitDedupCache initializes the Redis client used for webhook deduplication.
func InitDedupCache() {
	DedupCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDedupDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := DedupCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Dedup Cache): %v", err)
	}
}

// GetDedupCacheClient returns the webhook deduplication client.
func GetDedupCacheClient() *redis.Client {
	if DedupCacheClient == nil {
		InitDedupCache()
	}
	return DedupCacheClient
}
