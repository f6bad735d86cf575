package database

import (
	"context"
	"log"
	"time"

	"bulut3d/pkg/config"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects and pings; the cart cannot work without it.
func InitRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Println("[database] redis connected")
	return rdb, nil
}
