package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// idleAfter is how long a client limiter may sit unused before it is dropped.
const idleAfter = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	perMinute int
	rate      rate.Limit
	burst     int
	now       func() time.Time

	mu          sync.Mutex
	clients     map[string]*client
	lastCleanup time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per minute and client, with the
// given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		perMinute:   perMinute,
		rate:        rate.Limit(float64(perMinute) / time.Minute.Seconds()),
		burst:       burst,
		now:         time.Now,
		clients:     make(map[string]*client),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether a request from key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	rl.cleanupLocked(now)
	return c.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) cleanupLocked(now time.Time) {
	if now.Sub(rl.lastCleanup) < idleAfter {
		return
	}
	rl.lastCleanup = now
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) >= idleAfter {
			delete(rl.clients, key)
		}
	}
}

// retryAfter is the number of whole seconds until one token is available.
func (rl *RateLimiter) retryAfter() int {
	if rl.perMinute <= 0 {
		return 60
	}
	return max((60+rl.perMinute-1)/rl.perMinute, 1)
}

// Filter rejects clients over the limit with 429.
func (rl *RateLimiter) Filter(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		ip := ClientIP(req.Request)
		if !rl.Allow(ip) {
			logger.Warn("rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("path", req.Request.URL.Path),
			)
			resp.AddHeader("Retry-After", strconv.Itoa(rl.retryAfter()))
			_ = resp.WriteHeaderAndJson(http.StatusTooManyRequests, map[string]string{"message": "Too many requests. Please try again later."}, restful.MIME_JSON)
			return
		}
		chain.ProcessFilter(req, resp)
	}
}
