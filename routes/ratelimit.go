/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"golang.org/x/time/rate"

	"github.com/humaidq/biodash/metrics"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter applies a token bucket per client IP. Clients are keyed on
// the connection's peer address unless TrustProxy is set.
type IPRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*ipLimiter
	rate       rate.Limit
	burst      int
	trustProxy bool
	now        func() time.Time
}

// NewIPRateLimiter allows perMinute requests per client IP with the given burst.
func NewIPRateLimiter(perMinute float64, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}

	return &IPRateLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     rate.Limit(perMinute / 60),
		burst:    burst,
		now:      time.Now,
	}
}

// TrustProxy keys clients on the last X-Forwarded-For entry, the one added by
// the reverse proxy in front of the server. Only enable it behind such a
// proxy; otherwise clients choose their own key.
func (l *IPRateLimiter) TrustProxy() *IPRateLimiter {
	l.trustProxy = true
	return l
}

func (l *IPRateLimiter) clientKey(r *http.Request) string {
	if l.trustProxy {
		entries := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
		if ip := net.ParseIP(strings.TrimSpace(entries[len(entries)-1])); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}

	now := l.now()
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// Prune forgets clients not seen for longer than maxIdle.
func (l *IPRateLimiter) Prune(maxIdle time.Duration) {
	cutoff := l.now().Add(-maxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}

func (l *IPRateLimiter) retryAfter() string {
	if l.rate <= 0 {
		return "60"
	}

	seconds := math.Ceil(1 / float64(l.rate))
	return strconv.Itoa(int(math.Max(seconds, 1)))
}

// Handler rejects requests over the limit with 429.
func (l *IPRateLimiter) Handler() flamego.Handler {
	return func(c flamego.Context, s session.Session) {
		if c.Request().Method == http.MethodOptions {
			c.Next()
			return
		}

		if !l.allow(l.clientKey(c.Request().Request)) {
			metrics.RecordRateLimited()
			logRequestRejected(c, s, "rate_limited", http.StatusTooManyRequests)

			c.ResponseWriter().Header().Set("Retry-After", l.retryAfter())
			writeError(c, http.StatusTooManyRequests, "Too many requests", "Please wait before uploading another report")

			return
		}

		c.Next()
	}
}
