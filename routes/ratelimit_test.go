// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
)

func newRateLimitedApp(limiter *IPRateLimiter) *flamego.Flame {
	f := flamego.New()
	f.MapTo(newTestSession(), (*session.Session)(nil))
	f.Post("/upload", limiter.Handler(), func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusOK)
	})
	f.Options("/upload", limiter.Handler(), func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNoContent)
	})

	return f
}

func postFrom(f *flamego.Flame, ip string) *httptest.ResponseRecorder {
	return postVia(f, ip, "")
}

func postVia(f *flamego.Flame, peer string, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.RemoteAddr = net.JoinHostPort(peer, "40000")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func TestIPRateLimiterRejectsOverBurst(t *testing.T) {
	t.Parallel()

	f := newRateLimitedApp(NewIPRateLimiter(6, 2))

	for i := 0; i < 2; i++ {
		if rec := postFrom(f, "203.0.113.7"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, rec.Code)
		}
	}

	rec := postFrom(f, "203.0.113.7")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "10" {
		t.Fatalf("expected Retry-After 10, got %q", got)
	}

	if rec := postFrom(f, "198.51.100.1"); rec.Code != http.StatusOK {
		t.Fatalf("other clients must not be limited, got %d", rec.Code)
	}
}

func TestIPRateLimiterSkipsPreflight(t *testing.T) {
	t.Parallel()

	f := newRateLimitedApp(NewIPRateLimiter(1, 1))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
		rec := httptest.NewRecorder()
		f.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("preflight %d: expected status %d, got %d", i, http.StatusNoContent, rec.Code)
		}
	}
}

func TestIPRateLimiterPrune(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(60, 1)
	limiter.now = func() time.Time { return now }

	limiter.allow("203.0.113.7")
	now = now.Add(time.Hour)
	limiter.Prune(30 * time.Minute)

	limiter.mu.Lock()
	remaining := len(limiter.limiters)
	limiter.mu.Unlock()

	if remaining != 0 {
		t.Fatalf("expected idle limiter to be pruned, %d remain", remaining)
	}
}

func TestIPRateLimiterIgnoresForwardedForByDefault(t *testing.T) {
	t.Parallel()

	f := newRateLimitedApp(NewIPRateLimiter(1, 1))

	if rec := postVia(f, "203.0.113.7", "198.51.100.1"); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	for i := 2; i < 50; i++ {
		rec := postVia(f, "203.0.113.7", fmt.Sprintf("198.51.100.%d", i))
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("request %d with rotated X-Forwarded-For: expected status %d, got %d", i, http.StatusTooManyRequests, rec.Code)
		}
	}
}

func TestIPRateLimiterTrustProxyUsesLastHop(t *testing.T) {
	t.Parallel()

	f := newRateLimitedApp(NewIPRateLimiter(1, 1).TrustProxy())

	if rec := postVia(f, "10.0.0.2", "1.1.1.1, 203.0.113.7"); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	if rec := postVia(f, "10.0.0.2", "9.9.9.9, 203.0.113.7"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected spoofed leading entry to share the bucket, got %d", rec.Code)
	}

	if rec := postVia(f, "10.0.0.2", "203.0.113.8"); rec.Code != http.StatusOK {
		t.Fatalf("expected a different client behind the proxy to pass, got %d", rec.Code)
	}
}
