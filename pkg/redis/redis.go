package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type IRedis interface {
	// Hit counts one request for key in the current window and reports the
	// running total.
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

type redisClient struct {
	client *redis.Client
	prefix string
}

func New(addr string, password string, db int) IRedis {
	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", addr))

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client, prefix: "emotion:ratelimit:"}
}

func (r *redisClient) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	bucket := fmt.Sprintf("%s%s:%d", r.prefix, key, time.Now().UnixNano()/int64(window))

	count, err := r.client.Incr(ctx, bucket).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error counting hit for key %s: %v", bucket, err))
		return 0, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, bucket, window).Err(); err != nil {
			logrus.Error(fmt.Sprintf("Error setting expiry for key %s: %v", bucket, err))
			return count, err
		}
	}

	logrus.Debug(fmt.Sprintf("Counted hit %d for key %s", count, bucket))
	return count, nil
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
