package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateBudget is how many requests one caller may make per window. A limit
// of zero or less means unlimited.
type RateBudget struct {
	Name   string
	Limit  int
	Window time.Duration
}

// RateLimits splits each caller's allowance in two. POSTs to an advance
// route draw from Write and every other call draws from Read.
type RateLimits struct {
	Read  RateBudget
	Write RateBudget
}

func (l RateLimits) budgetFor(c *gin.Context) RateBudget {
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/advance") {
		return l.Write
	}
	return l.Read
}

// RateLimiterMiddleware is a fixed-window limiter keyed by budget and session
// user, or by client IP before a session exists. Redis failures let the
// request through.
func RateLimiterMiddleware(rdb *redis.Client, limits RateLimits) gin.HandlerFunc {
	return func(c *gin.Context) {
		budget := limits.budgetFor(c)
		if budget.Limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("habitleague:rate:%s:%s", budget.Name, rateKey(c))
		count, ttl, err := budget.take(c.Request.Context(), rdb, key)
		if err != nil {
			log.Printf("[RATE] Redis error, %s limiter skipped: %v", budget.Name, err)
			c.Next()
			return
		}

		remaining := int64(budget.Limit) - count
		c.Header("X-RateLimit-Scope", budget.Name)
		c.Header("X-RateLimit-Limit", strconv.Itoa(budget.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, remaining), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if remaining < 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"scope":      budget.Name,
				"retry_in_s": int(ttl.Seconds()),
			})
			return
		}

		c.Next()
	}
}

// take counts one request against key and returns the count so far in the
// window and the time until the window resets. A key found without expiry
// starts a new window.
func (b RateBudget) take(ctx context.Context, rdb *redis.Client, key string) (int64, time.Duration, error) {
	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	ttl := pttl.Val()
	if ttl < 0 {
		if err := rdb.PExpire(ctx, key, b.Window).Err(); err != nil {
			rdb.Del(ctx, key)
			return 0, 0, err
		}
		ttl = b.Window
	}
	return incr.Val(), ttl, nil
}

func rateKey(c *gin.Context) string {
	if id := c.GetString(ContextUserIDKey); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}
