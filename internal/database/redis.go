package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pakodev28/foodgram-project-react/config"
	"github.com/redis/go-redis/v9"
)

const redisClientName = "foodgram-api"

// redisOptions builds client options from cfg. REDIS_URL wins over host and port.
func redisOptions(cfg *config.Config) (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts = parsed
	}

	// shows up in CLIENT LIST next to other deployments sharing the server
	opts.ClientName = redisClientName
	if cfg.RedisKeyPrefix != "" {
		opts.ClientName = redisClientName + "-" + cfg.RedisKeyPrefix
	}
	return opts, nil
}

// NewRedisClient connects to the Redis used for rate limits and token revocation
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis] connected to %s, keys under %q", opts.Addr, cfg.RedisKeyPrefix)
	return client, nil
}
