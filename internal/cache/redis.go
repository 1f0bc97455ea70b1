package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"qrlink/entity"
	"qrlink/internal/config"
	"qrlink/lib/sl"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const targetPrefix = "qr:target:"

// Redis caches scan targets so a redirect can skip the document read
type Redis struct {
	rdb *goredis.Client
	ttl time.Duration
	log *slog.Logger
}

// NewRedis connects and pings; returns nil when the cache is disabled
func NewRedis(conf config.RedisConfig, log *slog.Logger) (*Redis, error) {
	if !conf.Enabled {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	r := &Redis{
		rdb: rdb,
		ttl: time.Duration(conf.TTL) * time.Second,
		log: log.With(sl.Module("cache.redis")),
	}
	r.log.Info("redis connected", slog.String("addr", conf.Addr))
	return r, nil
}

// Target cached scan target; ok is false on a miss
func (r *Redis) Target(ctx context.Context, code string) (*entity.ScanTarget, bool, error) {
	data, err := r.rdb.Get(ctx, targetPrefix+code).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var target entity.ScanTarget
	if err = json.Unmarshal(data, &target); err != nil {
		return nil, false, fmt.Errorf("redis decode: %w", err)
	}
	return &target, true, nil
}

func (r *Redis) SetTarget(ctx context.Context, code string, target entity.ScanTarget) error {
	data, err := json.Marshal(target)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, targetPrefix+code, data, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, code string) error {
	return r.rdb.Del(ctx, targetPrefix+code).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
