package tenant

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/storefront/storefront-backend/pkg/types"
)

const resolvePath = "/api/stores/resolve-store"

// Lookup maps a host onto a store id using an authoritative source.
type Lookup interface {
	Resolve(ctx context.Context, host string) (int64, error)
}

type backendGetter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// BackendLookup asks the backend resolution endpoint for the store of a host.
type BackendLookup struct {
	client backendGetter
}

func NewBackendLookup(client backendGetter) (*BackendLookup, error) {
	if client == nil {
		return nil, errors.New("backend client required")
	}
	return &BackendLookup{client: client}, nil
}

func (l *BackendLookup) Resolve(ctx context.Context, host string) (int64, error) {
	var resp types.StoreResolution
	if err := l.client.Get(ctx, resolvePath, url.Values{"host": {host}}, &resp); err != nil {
		return 0, err
	}
	if !resp.Success || resp.StoreID == nil {
		msg := resp.Message
		if msg == "" {
			msg = "resolution unsuccessful"
		}
		return 0, errors.New(msg)
	}
	if *resp.StoreID <= 0 {
		return 0, fmt.Errorf("invalid store id %d", *resp.StoreID)
	}
	return *resp.StoreID, nil
}
