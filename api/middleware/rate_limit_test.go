package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
)

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: map[string]int64{}}
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func couponRequest(storeID int64, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/coupon", nil)
	req.RemoteAddr = ip + ":5678"
	return req.WithContext(WithStoreID(req.Context(), storeID))
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	limiter := newFakeLimiter()
	handler := RateLimit(NewRateLimitPolicy("coupon", time.Minute, 2), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, couponRequest(1, "1.2.3.4"))
		if i < 2 && resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i, resp.Code)
		}
		if i == 2 {
			if resp.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429 got %d", resp.Code)
			}
			if resp.Header().Get("Retry-After") != "60" {
				t.Fatalf("expected Retry-After 60, got %q", resp.Header().Get("Retry-After"))
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("unexpected code %s", payload.Error.Code)
			}
		}
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, couponRequest(2, "1.2.3.4"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected other store to have its own window, got %d", resp.Code)
	}
}

func TestRateLimitDisabledPolicy(t *testing.T) {
	limiter := newFakeLimiter()
	handler := RateLimit(NewRateLimitPolicy("coupon", 0, 1), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, couponRequest(1, "1.2.3.4"))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected disabled policy to pass, got %d", resp.Code)
		}
	}
	if len(limiter.counts) != 0 {
		t.Fatal("expected limiter to be bypassed")
	}
}

func TestRateLimitStoreFailure(t *testing.T) {
	limiter := newFakeLimiter()
	limiter.err = errors.New("redis down")
	handler := RateLimit(NewRateLimitPolicy("coupon", time.Minute, 5), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, couponRequest(1, "1.2.3.4"))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "7.7.7.7:1234"
	req.Header.Set("X-Forwarded-For", " 9.9.9.9 , 10.0.0.1")
	req.Header.Set("X-Real-IP", "8.8.8.8")

	if got := clientIP(req, false); got != "7.7.7.7" {
		t.Fatalf("expected socket ip when headers are untrusted, got %s", got)
	}
	if got := clientIP(req, true); got != "10.0.0.1" {
		t.Fatalf("expected last forwarded hop, got %s", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := clientIP(req, true); got != "8.8.8.8" {
		t.Fatalf("expected real ip header, got %s", got)
	}
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := newFakeLimiter()
	handler := RateLimit(NewRateLimitPolicy("coupon", time.Minute, 2), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i := 0; i < 3; i++ {
		req := couponRequest(1, "1.2.3.4")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		last = resp.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected rotating forwarded header not to reset the window, got %d", last)
	}
}

func TestRateLimitTrustedProxyUsesLastHop(t *testing.T) {
	limiter := newFakeLimiter()
	policy := NewRateLimitPolicy("coupon", time.Minute, 1, TrustForwardedFor(true))
	handler := RateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := couponRequest(1, "10.0.0.9")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d, 198.51.100.7", i))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if i == 1 && resp.Code != http.StatusTooManyRequests {
			t.Fatalf("expected client-supplied hops to be ignored, got %d", resp.Code)
		}
	}
	if _, ok := limiter.counts["coupon:1:198.51.100.7"]; !ok {
		t.Fatalf("expected bucket keyed by proxy-appended hop, got %v", limiter.counts)
	}
}
