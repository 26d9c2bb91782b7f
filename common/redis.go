package common

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pixai-app/pixai-api/common/logger"
)

var RDB *redis.Client
var RedisEnabled = false

// InitRedisClient is a no-op unless REDIS_CONN_STRING is set.
func InitRedisClient() (err error) {
	if os.Getenv("REDIS_CONN_STRING") == "" {
		logger.SysLog("REDIS_CONN_STRING not set, Redis is not enabled")
		return nil
	}
	logger.SysLog("Redis is enabled")
	RedisEnabled = true
	opt, err := redis.ParseURL(os.Getenv("REDIS_CONN_STRING"))
	if err != nil {
		logger.FatalLog("failed to parse Redis connection string: " + err.Error())
	}
	RDB = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = RDB.Ping(ctx).Result()
	if err != nil {
		logger.FatalLog("Redis ping test failed: " + err.Error())
	}
	return err
}

func RedisGet(ctx context.Context, key string) (string, error) {
	return RDB.Get(ctx, key).Result()
}

func RedisDel(ctx context.Context, key string) error {
	return RDB.Del(ctx, key).Err()
}

// RedisDecrease lowers a cached counter. A missing key becomes -value,
// which readers treat as stale.
func RedisDecrease(ctx context.Context, key string, value int64, expiration time.Duration) error {
	_, err := RDB.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.DecrBy(ctx, key, value)
		pipe.Expire(ctx, key, expiration)
		return nil
	})
	return err
}

// RedisSetUnlessChanged stores the value produced by load unless key was
// written while load ran. It reports whether the value was stored.
func RedisSetUnlessChanged(ctx context.Context, key string, expiration time.Duration, load func() (string, error)) (bool, error) {
	err := RDB.Watch(ctx, func(tx *redis.Tx) error {
		value, err := load()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, expiration)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return err == nil, err
}
