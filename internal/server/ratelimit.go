package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter enforces a fixed-window per-minute request budget per client.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	clients           map[string]*clientWindow
}

type clientWindow struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a rate limiter allowing requestsPerMinute requests
// per client per minute. A limit of 0 disables the limiter.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		clients:           make(map[string]*clientWindow),
	}
}

// Allow reports whether a request from the given client may proceed, and
// counts it if so.
func (rl *RateLimiter) Allow(clientID string) error {
	if rl.requestsPerMinute <= 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	window, exists := rl.clients[clientID]
	if !exists || now.Sub(window.windowStart) >= time.Minute {
		window = &clientWindow{windowStart: now}
		rl.clients[clientID] = window
	}

	if window.count >= rl.requestsPerMinute {
		return &RateLimitError{
			Limit:      rl.requestsPerMinute,
			RetryAfter: time.Minute - now.Sub(window.windowStart),
		}
	}

	window.count++
	return nil
}

// Usage returns the request count in the client's current window.
func (rl *RateLimiter) Usage(clientID string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	window, exists := rl.clients[clientID]
	if !exists || time.Since(window.windowStart) >= time.Minute {
		return 0
	}
	return window.count
}

// RateLimitError reports an exhausted request budget.
type RateLimitError struct {
	Limit      int           // requests allowed per minute
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (limit: %d/min, retry after: %v)", e.Limit, e.RetryAfter)
}
