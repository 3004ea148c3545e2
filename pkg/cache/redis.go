package cache

import (
	"context"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/redis/go-redis/v9"
)

// NewRedis returns a connected client, or an error when the server cannot be pinged.
func NewRedis(cfg internal.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
