package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeKV) CartKey(storeID int64, sessionID string) string {
	return fmt.Sprintf("sf:cart:%d:%s", storeID, sessionID)
}

func TestRedisSnapshotStoreLifecycle(t *testing.T) {
	kv := newFakeKV()
	store, err := NewRedisSnapshotStore(kv, time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	key := SessionKey{StoreID: 4, SessionID: "abc"}

	snap, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, snap)

	c := New()
	c.AddItem(product("1", "12.5"), "", "red")
	require.NoError(t, store.Save(ctx, key, c.Snapshot()))
	assert.Equal(t, time.Hour, kv.ttls["sf:cart:4:abc"])

	snap, err = store.Load(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "red", snap.Items[0].SelectedColor)

	require.NoError(t, store.Delete(ctx, key))
	snap, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedisSnapshotStoreCorruptPayload(t *testing.T) {
	kv := newFakeKV()
	kv.values["sf:cart:1:s"] = "{not json"
	store, err := NewRedisSnapshotStore(kv, 0)
	require.NoError(t, err)

	_, err = store.Load(context.Background(), SessionKey{StoreID: 1, SessionID: "s"})
	assert.Error(t, err)
}

func TestNewRedisSnapshotStoreRequiresClient(t *testing.T) {
	_, err := NewRedisSnapshotStore(nil, time.Hour)
	assert.Error(t, err)
}
