package cart

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
)

const lockStripes = 64

// SessionKey scopes a cart to one shopper session inside one store.
type SessionKey struct {
	StoreID   int64
	SessionID string
}

func (k SessionKey) validate() error {
	if k.StoreID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if strings.TrimSpace(k.SessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return nil
}

// SnapshotStore persists cart snapshots. Load returns (nil, nil) when no
// snapshot exists for key.
type SnapshotStore interface {
	Load(ctx context.Context, key SessionKey) (*Snapshot, error)
	Save(ctx context.Context, key SessionKey, snap Snapshot) error
	Delete(ctx context.Context, key SessionKey) error
}

// Service loads, mutates and persists session carts.
type Service interface {
	Get(ctx context.Context, key SessionKey) (*Cart, error)
	Mutate(ctx context.Context, key SessionKey, fn func(*Cart)) (*Cart, error)
	Discard(ctx context.Context, key SessionKey) error
}

type service struct {
	store SnapshotStore
	opts  []Option
	locks [lockStripes]sync.Mutex
}

// NewService builds a cart service over the provided snapshot store. opts are
// applied to every cart it materializes.
func NewService(store SnapshotStore, opts ...Option) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	return &service{store: store, opts: opts}, nil
}

func (s *service) Get(ctx context.Context, key SessionKey) (*Cart, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	return s.load(ctx, key)
}

// Mutate applies fn to the session cart and persists the result before
// returning, so the stored snapshot always matches the returned cart.
func (s *service) Mutate(ctx context.Context, key SessionKey, fn func(*Cart)) (*Cart, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart mutation required")
	}

	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.store.Save(ctx, key, c.Snapshot()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return c, nil
}

func (s *service) Discard(ctx context.Context, key SessionKey) error {
	if err := key.validate(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, key SessionKey) (*Cart, error) {
	snap, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if snap == nil {
		return New(s.opts...), nil
	}
	return Rehydrate(*snap, s.opts...), nil
}

// lockFor serializes mutations of one session within this process.
func (s *service) lockFor(key SessionKey) *sync.Mutex {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%d:%s", key.StoreID, key.SessionID)
	return &s.locks[h.Sum32()%lockStripes]
}
