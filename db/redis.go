// db/redis.go
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/mintgate/logging"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// CacheWhitelistStatus stores the allowed flag for a derived authorization key.
func CacheWhitelistStatus(ctx context.Context, authKey string, allowed bool) error {
	key := fmt.Sprintf("whitelist:%s", authKey)
	value := "0"
	if allowed {
		value = "1"
	}

	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	if err := RedisClient.Set(ctx, key, value, defaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache whitelist status: %w", err)
	}

	logger.Debug("Whitelist status cached", zap.String("authKey", authKey), zap.Bool("allowed", allowed))
	return nil
}

// GetCachedWhitelistStatus returns the cached allowed flag, or nil on a miss.
func GetCachedWhitelistStatus(ctx context.Context, authKey string) (*bool, error) {
	key := fmt.Sprintf("whitelist:%s", authKey)
	value, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Whitelist status not found in cache", zap.String("authKey", authKey))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get whitelist status from cache: %w", err)
	}

	allowed := value == "1"
	return &allowed, nil
}

func DeleteCachedWhitelistStatus(ctx context.Context, authKey string) error {
	key := fmt.Sprintf("whitelist:%s", authKey)
	if err := RedisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete whitelist status from cache: %w", err)
	}
	logger.Debug("Whitelist status deleted from cache", zap.String("authKey", authKey))
	return nil
}

// CachePerUnitFee stores the per-unit minting fee for a license terms instance.
func CachePerUnitFee(ctx context.Context, templateID string, termsID uint64, fee decimal.Decimal) error {
	key := fmt.Sprintf("fee:%s:%d", templateID, termsID)
	ttl := viper.GetDuration("redis.feeCacheTTL")
	if err := RedisClient.Set(ctx, key, fee.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache per-unit fee: %w", err)
	}

	logger.Debug("Per-unit fee cached",
		zap.String("templateID", templateID),
		zap.Uint64("termsID", termsID),
		zap.String("fee", fee.String()))
	return nil
}

// GetCachedPerUnitFee returns the cached per-unit fee, or nil on a miss.
func GetCachedPerUnitFee(ctx context.Context, templateID string, termsID uint64) (*decimal.Decimal, error) {
	key := fmt.Sprintf("fee:%s:%d", templateID, termsID)
	value, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get per-unit fee from cache: %w", err)
	}

	fee, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cached fee: %w", err)
	}
	return &fee, nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
