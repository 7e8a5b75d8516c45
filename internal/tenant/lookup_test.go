package tenant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/storefront-backend/pkg/backend"
)

func newBackendServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/stores/resolve-store" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("host") {
		case "shop.example.com":
			_, _ = w.Write([]byte(`{"success":true,"storeId":5}`))
		case "soft-fail.example.com":
			_, _ = w.Write([]byte(`{"success":false,"message":"store disabled"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"Store not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBackendLookup(t *testing.T) {
	var calls atomic.Int32
	srv := newBackendServer(t, &calls)
	client, err := backend.NewClient(srv.URL)
	require.NoError(t, err)
	lookup, err := NewBackendLookup(client)
	require.NoError(t, err)

	id, err := lookup.Resolve(context.Background(), "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	_, err = lookup.Resolve(context.Background(), "soft-fail.example.com")
	assert.EqualError(t, err, "store disabled")

	_, err = lookup.Resolve(context.Background(), "missing.example.com")
	assert.True(t, backend.IsKind(err, backend.KindNotFound))
}

func TestResolverOverBackendMakesOneRequestPerHost(t *testing.T) {
	var calls atomic.Int32
	srv := newBackendServer(t, &calls)
	client, err := backend.NewClient(srv.URL)
	require.NoError(t, err)
	lookup, err := NewBackendLookup(client)
	require.NoError(t, err)
	r := newTestResolver(t, lookup)

	for i := 0; i < 3; i++ {
		id, err := r.ResolveStoreID(context.Background(), Request{Host: "shop.example.com"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestBackendLookupUnreachableFallsBackToDefault(t *testing.T) {
	client, err := backend.NewClient("http://127.0.0.1:1")
	require.NoError(t, err)
	lookup, err := NewBackendLookup(client)
	require.NoError(t, err)
	r := newTestResolver(t, lookup, WithDefaultStoreID(1))

	assert.Equal(t, int64(1), r.ResolveOrDefault(context.Background(), Request{Host: "shop.example.com"}))
}
