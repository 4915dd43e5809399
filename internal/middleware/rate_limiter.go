package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/787516/Matrimonial/pkg/utils"
	"github.com/gin-gonic/gin"
)

// RateLimiter implements a simple in-memory fixed window rate limiter
type RateLimiter struct {
	userLimits map[uint]*windowCount
	ipLimits   map[string]*windowCount
	mu         sync.Mutex

	userMaxRequests int
	ipMaxRequests   int
	window          time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type windowCount struct {
	requests  int
	resetTime time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(userMaxRequests, ipMaxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		userLimits:      make(map[uint]*windowCount),
		ipLimits:        make(map[string]*windowCount),
		userMaxRequests: userMaxRequests,
		ipMaxRequests:   ipMaxRequests,
		window:          window,
		stop:            make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// CheckUserLimit records one request for userID and reports whether it is
// within the limit
func (rl *RateLimiter) CheckUserLimit(userID uint) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return take(rl.userLimits, userID, rl.userMaxRequests, rl.window)
}

// CheckIPLimit records one request for ip and reports whether it is within
// the limit
func (rl *RateLimiter) CheckIPLimit(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return take(rl.ipLimits, ip, rl.ipMaxRequests, rl.window)
}

// GetUserRemaining returns remaining requests for user
func (rl *RateLimiter) GetUserRemaining(userID uint) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return remaining(rl.userLimits, userID, rl.userMaxRequests)
}

// GetIPRemaining returns remaining requests for IP
func (rl *RateLimiter) GetIPRemaining(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return remaining(rl.ipLimits, ip, rl.ipMaxRequests)
}

func take[K comparable](limits map[K]*windowCount, key K, maxRequests int, window time.Duration) bool {
	now := time.Now()

	limit, exists := limits[key]
	if !exists || now.After(limit.resetTime) {
		limits[key] = &windowCount{requests: 1, resetTime: now.Add(window)}
		return true
	}

	if limit.requests >= maxRequests {
		return false
	}

	limit.requests++
	return true
}

func remaining[K comparable](limits map[K]*windowCount, key K, maxRequests int) int {
	limit, exists := limits[key]
	if !exists || time.Now().After(limit.resetTime) {
		return maxRequests
	}

	left := maxRequests - limit.requests
	if left < 0 {
		return 0
	}
	return left
}

// cleanup removes expired entries until Stop is called
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		now := time.Now()
		for userID, limit := range rl.userLimits {
			if now.After(limit.resetTime) {
				delete(rl.userLimits, userID)
			}
		}
		for ip, limit := range rl.ipLimits {
			if now.After(limit.resetTime) {
				delete(rl.ipLimits, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Reset clears all rate limits
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.userLimits = make(map[uint]*windowCount)
	rl.ipLimits = make(map[string]*windowCount)
}

// IPRateLimit rejects clients that exceed the per-IP limit
func IPRateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.CheckIPLimit(ip) {
			utils.TooManyRequests(c, "too many requests, slow down")
			return
		}
		c.Next()
	}
}

// UserRateLimit rejects authenticated users that exceed the per-user limit.
// It must run after Auth.
func UserRateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Next()
			return
		}
		if !rl.CheckUserLimit(userID) {
			utils.TooManyRequests(c, "too many requests, slow down")
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.GetUserRemaining(userID)))
		c.Next()
	}
}
