package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mdavis72884/bramble-claude-sub001/pkg/redis"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/response"
)

// maxLocalClients bounds the in-process limiter table
const maxLocalClients = 10000

// RateLimit per-client limit of limit requests per window.
// Uses the redis sliding window when rdb is set and reachable; otherwise an
// in-process token bucket per client IP takes over. limit <= 0 disables it.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	local := newLocalLimiter(limit, window)

	return func(c *gin.Context) {
		allowed := true
		if rdb != nil {
			key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
			ok, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
			if err != nil {
				logger.Warn("redis rate limit unavailable, using local limiter", zap.Error(err))
				allowed = local.allow(c.ClientIP())
			} else {
				allowed = ok
			}
		} else {
			allowed = local.allow(c.ClientIP())
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "too many requests, retry later")
			c.Abort()
			return
		}

		c.Next()
	}
}

// localLimiter token bucket per client, refilled at limit/window.
type localLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

func newLocalLimiter(limit int, window time.Duration) *localLimiter {
	return &localLimiter{
		clients: make(map[string]*rate.Limiter),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
	}
}

func (l *localLimiter) allow(client string) bool {
	l.mu.Lock()
	lim, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= maxLocalClients {
			l.clients = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.every, l.burst)
		l.clients[client] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
