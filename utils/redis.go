package utils

import (
	"context"
	"log"
	"time"

	"propertyservices/config"

	"github.com/go-redis/redis/v8"
)

var (
	// GeoClient holds live provider locations.
	GeoClient *redis.Client
	// CacheClient holds short-lived derived data such as proximity quote samples.
	CacheClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects the geo and cache clients.
func InitRedis() {
	GeoClient = newRedisClient(config.AppConfig.RedisGeoDB, "Geo")
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
}

// GetGeoClient returns the live location client.
func GetGeoClient() *redis.Client {
	if GeoClient == nil {
		GeoClient = newRedisClient(config.AppConfig.RedisGeoDB, "Geo")
	}
	return GeoClient
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}
