package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/storefront/storefront-backend/api/middleware"
	cartsvc "github.com/storefront/storefront-backend/internal/cart"
)

type memorySnapshots struct {
	mu    sync.Mutex
	snaps map[cartsvc.SessionKey]cartsvc.Snapshot
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{snaps: map[cartsvc.SessionKey]cartsvc.Snapshot{}}
}

func (m *memorySnapshots) Load(_ context.Context, key cartsvc.SessionKey) (*cartsvc.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[key]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *memorySnapshots) Save(_ context.Context, key cartsvc.SessionKey, snap cartsvc.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = snap
	return nil
}

func (m *memorySnapshots) Delete(_ context.Context, key cartsvc.SessionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}

func newCartService(t *testing.T) cartsvc.Service {
	t.Helper()
	svc, err := cartsvc.NewService(newMemorySnapshots())
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	return svc
}

// storefrontRequest builds a request carrying the context the storefront
// middleware chain would have produced.
func storefrontRequest(method, target, body string, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := middleware.WithStoreID(req.Context(), 3)
	ctx = middleware.WithCartSession(ctx, "sess-1")
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return envelope.Error.Code
}
