package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/storefront-backend/internal/tenant"
	"github.com/storefront/storefront-backend/pkg/db/models"
)

type storeCreator interface {
	Create(ctx context.Context, store *models.Store) error
}

type storeInput struct {
	Name      string
	Host      string
	Subdomain string
	Active    bool
}

// registerStore inserts a store row with its host normalised the same way
// the tenant resolver normalises incoming requests.
func registerStore(ctx context.Context, repo storeCreator, in storeInput) (*models.Store, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New("missing -store-name for register-store")
	}
	host := tenant.NormalizeHost(in.Host)
	subdomain := strings.ToLower(strings.TrimSpace(in.Subdomain))
	if host == "" && subdomain == "" {
		return nil, errors.New("register-store needs -host or -subdomain")
	}
	if strings.Contains(subdomain, ".") {
		return nil, fmt.Errorf("subdomain %q must be a single label", subdomain)
	}

	store := &models.Store{Name: name, Active: in.Active}
	if host != "" {
		store.Host = &host
	}
	if subdomain != "" {
		store.Subdomain = &subdomain
	}
	if err := repo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("create store %q: %w", name, err)
	}
	return store, nil
}
