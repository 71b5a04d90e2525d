// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the validator service.
//
// The rate limiter guards the hosting endpoint only; the engine itself
// assumes it is always called within allowed limits. Counting is
// fixed-window per client identifier: the X-Sentinel-Client header when
// present, the client IP otherwise.
package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seedpost/sentinel/services/validator/observability"
)

// clientHeader identifies the caller for rate-limiting purposes.
const clientHeader = "X-Sentinel-Client"

type windowCounter struct {
	windowStart time.Time
	count       int
}

// RateLimiter is a fixed-window request counter keyed by client
// identifier. Safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	clients map[string]*windowCounter
}

// NewRateLimiter returns a limiter allowing limit requests per window
// per client.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*windowCounter),
	}
}

// Allow records one request for the client and reports whether it fits
// in the current window. The second return value is how long until the
// window resets, for the Retry-After header.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	wc, ok := rl.clients[client]
	if !ok || now.Sub(wc.windowStart) >= rl.window {
		rl.clients[client] = &windowCounter{windowStart: now, count: 1}
		return true, 0
	}
	wc.count++
	if wc.count > rl.limit {
		return false, wc.windowStart.Add(rl.window).Sub(now)
	}
	return true, 0
}

// Middleware enforces the limit on every request passing through it.
// Rejections are counted on the request metrics under the rate_limited
// status.
func (rl *RateLimiter) Middleware(metrics *observability.ValidatorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.GetHeader(clientHeader)
		if client == "" {
			client = c.ClientIP()
		}
		ok, retryAfter := rl.Allow(client)
		if !ok {
			metrics.RecordRequest("validate", "rate_limited")
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
