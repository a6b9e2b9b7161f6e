// config/redis.go
package config

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

// redisOptions builds client options from the environment. REDIS_URL takes
// precedence; otherwise REDIS_ADDR, REDIS_PASSWORD and REDIS_DB are read
// individually.
func redisOptions() (*redis.Options, error) {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return redis.ParseURL(url)
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	db := 0
	if s := os.Getenv("REDIS_DB"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			db = parsed
		}
	}

	return &redis.Options{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}, nil
}

// ConnectRedis connects the cache backing the membership tier list and the
// per-user team summaries. The platform runs without it: a nil client means
// every read goes to Mongo.
func ConnectRedis() *redis.Client {
	opts, err := redisOptions()
	if err != nil {
		log.Printf("Warning: invalid Redis configuration: %v", err)
		log.Println("Tier and team caching disabled")
		return nil
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		log.Println("Tier and team caching disabled")
		return nil
	}

	log.Println("Connected to Redis")
	RedisClient = client
	return client
}

// CloseRedis releases the cache connection on shutdown.
func CloseRedis() {
	if RedisClient != nil {
		RedisClient.Close()
	}
}
