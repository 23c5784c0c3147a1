package main

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	apperrors "chatrelay/internal/errors"
)

// validateAccessToken compares the access_token header against the
// configured webhook secret in constant time.
func validateAccessToken(r *http.Request, secret string) error {
	token := r.Header.Get("access_token")
	if token == "" {
		return apperrors.NewAuthError("missing access token")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return apperrors.NewAuthError("invalid access token")
	}
	return nil
}

// RateLimiter is a per-IP sliding-window rate limiter.
type RateLimiter struct {
	mu       sync.RWMutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window per
// client IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a request from ip may proceed, recording it if so.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	recent := rl.requests[ip][:0]
	for _, ts := range rl.requests[ip] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= rl.limit {
		rl.requests[ip] = recent
		return false
	}

	rl.requests[ip] = append(recent, now)
	return true
}

// cleanup drops IPs with no recent requests so the map cannot grow
// unbounded under address churn.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-rl.window)
		for ip, timestamps := range rl.requests {
			active := false
			for _, ts := range timestamps {
				if ts.After(cutoff) {
					active = true
					break
				}
			}
			if !active {
				delete(rl.requests, ip)
			}
		}
		rl.mu.Unlock()
	}
}
