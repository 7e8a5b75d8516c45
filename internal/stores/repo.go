package stores

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Create(store).Error
}

// FindByHost loads the active store bound to an exact host.
func (r *Repository) FindByHost(ctx context.Context, host string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("host = ? AND active = ?", host, true).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindBySubdomain loads the active store registered under subdomain.
func (r *Repository) FindBySubdomain(ctx context.Context, subdomain string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("subdomain = ? AND active = ?", subdomain, true).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}
