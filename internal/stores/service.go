package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/internal/tenant"
	"github.com/storefront/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
)

type storeRepository interface {
	FindByHost(ctx context.Context, host string) (*models.Store, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Store, error)
}

// Service answers which store serves a host.
type Service interface {
	ResolveHost(ctx context.Context, host string) (int64, error)
}

type service struct {
	repo storeRepository
}

// NewService builds a store service with the provided repository.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

// ResolveHost matches the exact host first, then its leading label as a
// subdomain.
func (s *service) ResolveHost(ctx context.Context, host string) (int64, error) {
	normalized := tenant.NormalizeHost(host)
	if normalized == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "host is required")
	}

	store, err := s.repo.FindByHost(ctx, normalized)
	if err == nil {
		return store.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find store by host")
	}

	if label, _, ok := strings.Cut(normalized, "."); ok && label != "" && label != "www" {
		store, err = s.repo.FindBySubdomain(ctx, label)
		if err == nil {
			return store.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find store by subdomain")
		}
	}

	return 0, pkgerrors.Wrap(pkgerrors.CodeStoreNotFound, tenant.ErrStoreNotFound, "Store not found")
}
