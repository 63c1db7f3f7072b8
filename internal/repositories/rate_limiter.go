package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitRepository interface {
	// CheckCheckoutRateLimit returns isAllowed, attempts left, seconds to wait.
	CheckCheckoutRateLimit(ctx context.Context, userID uuid.UUID) (bool, int, int, error)
}

type redisRepository struct {
	client *redis.Client
	cfg    config.RateConfig
	now    func() time.Time
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	redisURL := cfg.RedisConnect.GetDSN()
	slog.Info("Connecting to Redis", slog.String("url", fmt.Sprintf("redis://%s:<password>@%s:%s", cfg.RedisConnect.Username, cfg.RedisConnect.Host, cfg.RedisConnect.Port)))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Error("Failed to parse Redis URL", slog.Any("error", err))
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.DB = cfg.RedisConnect.DB

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("✅ Successfully connected to Redis")
	return client, nil
}

func NewRateLimitRepo(client *redis.Client, cfg *config.Config) RateLimitRepository {
	return NewRateLimitRepoWithClock(client, cfg, time.Now)
}

func NewRateLimitRepoWithClock(client *redis.Client, cfg *config.Config, now func() time.Time) RateLimitRepository {
	return &redisRepository{client: client, cfg: cfg.RateConfig, now: now}
}

func checkoutKey(userID uuid.UUID) string {
	return fmt.Sprintf("checkout_attempts:%s", userID)
}

// Attempts live in a sorted set scored by unix milliseconds. Members are
// nanosecond stamps so two attempts in the same millisecond both count.
func (r *redisRepository) CheckCheckoutRateLimit(ctx context.Context, userID uuid.UUID) (bool, int, int, error) {

	logger := middleware.LoggerFromContext(ctx)

	key := checkoutKey(userID)
	window := r.cfg.WindowSize

	now := r.now()
	nowMs := now.UnixMilli()
	windowStart := nowMs - window.Milliseconds()

	pipe := r.client.Pipeline()

	// drop attempts that fell out of the window
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))

	pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: strconv.FormatInt(now.UnixNano(), 10)})

	count := pipe.ZCard(ctx, key)

	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Redis pipeline execution failed for rate limit", slog.String("key", key), slog.Any("error", err))
		return false, 0, 0, fmt.Errorf("redis pipeline error for rate limit check: %w", err)
	}

	attempts := count.Val()
	remaining := r.cfg.MaxAttempts - attempts

	if attempts > r.cfg.MaxAttempts {

		scores, err := r.client.ZRangeArgsWithScores(ctx, redis.ZRangeArgs{Key: key, Start: 0, Stop: 0}).Result()
		if err == nil && len(scores) == 0 {
			err = redis.Nil
		}
		if err != nil {
			logger.Error("Failed to get oldest attempt time for rate limit", slog.String("key", key), slog.Any("error", err))
			return false, 0, int(window.Seconds()), fmt.Errorf("failed to get oldest attempt time: %w", err)
		}

		oldest := int64(scores[0].Score)
		waitMs := max(oldest+window.Milliseconds()-nowMs, 0)
		retryAfter := int((time.Duration(waitMs)*time.Millisecond + time.Second - 1) / time.Second)

		logger.Warn("Checkout rate limit exceeded", slog.String("userId", userID.String()), slog.Int64("attempts", attempts))
		return false, 0, retryAfter, nil
	}

	logger.Debug("Rate limit check passed", slog.String("userId", userID.String()), slog.Int64("attempts", attempts), slog.Int64("remaining", remaining))
	return true, int(remaining), 0, nil
}
