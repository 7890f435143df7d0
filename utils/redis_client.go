package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/cracker/config"
)

var (
	redisClient atomic.Pointer[redis.Client]
	redisOnce   sync.Once
)

// GetRedis returns a singleton Redis client based on loaded config.
// It returns nil when no Redis host is configured; callers fall back to
// the database or to in-memory state.
func GetRedis() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.Get()
		if !cfg.RedisEnabled() {
			return
		}
		rc := redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			Sugar.Warnf("redis ping failed addr=%s err=%v", rc.Options().Addr, err)
		}
		redisClient.Store(rc)
	})
	return redisClient.Load()
}

// SetRedis replaces the shared client, skipping config based setup. A nil
// client disables Redis.
func SetRedis(rc *redis.Client) {
	redisOnce.Do(func() {})
	redisClient.Store(rc)
}

// PingRedis reports whether Redis answers. A disabled Redis counts as healthy.
func PingRedis(ctx context.Context) error {
	rc := GetRedis()
	if rc == nil {
		return nil
	}
	return rc.Ping(ctx).Err()
}
