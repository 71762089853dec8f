package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiterConfig bounds each client IP to MaxRequests per Window.
type RateLimiterConfig struct {
	MaxRequests int
	Window      time.Duration
}

const rateLimitKeyPrefix = "trails:ratelimit:"

// RateLimiter is a fixed-window per-IP counter kept in Redis.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimiterConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{redis: redisClient, config: config}
}

// Middleware fails open: a Redis error lets the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, retryAfter, err := rl.CheckLimit(c.Request.Context(), clientIP)
		if err != nil {
			logger.Log.Warn("Rate limiter unavailable", zap.String("ip", clientIP), zap.Error(err))
			c.Next()
			return
		}
		if allowed {
			c.Next()
			return
		}

		seconds := int(math.Ceil(retryAfter.Seconds()))
		logger.Log.Debug("Request throttled",
			zap.String("ip", clientIP),
			zap.String("path", c.Request.URL.Path),
		)
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success":     false,
			"message":     "Too many requests. Please try again later.",
			"retry_after": seconds,
		})
	}
}

// CheckLimit counts a request from ip and reports whether it is within the
// limit. When it is not, the returned duration is the time left in the
// current window.
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip string) (bool, time.Duration, error) {
	key := rateLimitKeyPrefix + ip

	var incr *redis.IntCmd
	var pttl *redis.DurationCmd
	if _, err := rl.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	}); err != nil {
		return false, 0, err
	}

	// A counter without expiry starts a new window, including one left
	// behind by a client that died between INCR and PEXPIRE.
	ttl := pttl.Val()
	if ttl < 0 {
		if err := rl.redis.PExpire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
		ttl = rl.config.Window
	}

	if incr.Val() > int64(rl.config.MaxRequests) {
		return false, ttl, nil
	}
	return true, 0, nil
}
