package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"nestly/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	discoveryCachePrefix = "discovery:"
	discoveryGenPrefix   = "discovery:gen:"
)

var errStaleGeneration = errors.New("discovery generation moved")

// RedisDiscoveryCache keeps ranked discovery results in Redis for a short TTL.
// Cache failures degrade to a store read.
type RedisDiscoveryCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func (c *RedisDiscoveryCache) Get(ctx context.Context, service string) ([]models.ProviderProfile, int64, bool) {
	vals, err := c.Client.MGet(ctx, discoveryGenPrefix+service, discoveryCachePrefix+service).Result()
	if err != nil {
		c.warn("Discovery cache read failed", service, err)
		return nil, 0, false
	}
	gen, err := parseGeneration(vals[0])
	if err != nil {
		c.warn("Discovery cache generation unreadable", service, err)
		return nil, 0, false
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, gen, false
	}
	var profiles []models.ProviderProfile
	if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
		return nil, gen, false
	}
	return profiles, gen, true
}

// Set writes providers under a WATCH on the generation key, so an
// Invalidate landing after the caller's store read wins.
func (c *RedisDiscoveryCache) Set(ctx context.Context, service string, generation int64, providers []models.ProviderProfile) {
	if c.TTL <= 0 {
		return
	}
	data, err := json.Marshal(providers)
	if err != nil {
		return
	}
	genKey := discoveryGenPrefix + service
	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, discoveryCachePrefix+service, data, c.TTL)
			return nil
		})
		return err
	}, genKey)
	if err == nil || errors.Is(err, errStaleGeneration) || err == redis.TxFailedErr {
		return
	}
	c.warn("Discovery cache write failed", service, err)
}

func (c *RedisDiscoveryCache) Invalidate(ctx context.Context, services ...string) {
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range services {
			pipe.Incr(ctx, discoveryGenPrefix+s)
			pipe.Del(ctx, discoveryCachePrefix+s)
		}
		return nil
	})
	if err != nil && c.Logger != nil {
		c.Logger.Warn("Discovery cache invalidation failed", zap.Strings("services", services), zap.Error(err))
	}
}

func (c *RedisDiscoveryCache) warn(msg, service string, err error) {
	if c.Logger != nil {
		c.Logger.Warn(msg, zap.String("service", service), zap.Error(err))
	}
}

func parseGeneration(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
