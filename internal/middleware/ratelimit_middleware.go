package middleware

import (
	"context"
	"sync"
	"time"
)

// InvalidAuthRateLimiter limits failed login attempts per IP.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	limit    int
	window   time.Duration
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit failures per window and per IP.
func NewInvalidAuthRateLimiter(limit int, window time.Duration) *InvalidAuthRateLimiter {
	return &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Blocked reports whether the IP exhausted its failures in the current window.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.attempts[ip]
	if !ok {
		return false
	}
	if r.now().Sub(info.firstAt) > r.window {
		delete(r.attempts, ip)
		return false
	}
	return info.count >= r.limit
}

// Fail records a failed attempt for the IP.
func (r *InvalidAuthRateLimiter) Fail(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, ok := r.attempts[ip]
	if !ok || now.Sub(info.firstAt) > r.window {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return
	}
	info.count++
}

// Reset forgets the IP's failures after a successful login.
func (r *InvalidAuthRateLimiter) Reset(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, ip)
}

// Cleanup drops expired entries every interval until ctx is done.
func (r *InvalidAuthRateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for ip, info := range r.attempts {
				if now.Sub(info.firstAt) > r.window {
					delete(r.attempts, ip)
				}
			}
			r.mu.Unlock()
		}
	}
}
