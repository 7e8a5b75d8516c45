package models

import "time"

// Store is a tenant of the storefront, addressed by its custom host or by a
// subdomain of the platform domain.
type Store struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null"`
	Host      *string   `gorm:"column:host;uniqueIndex"`
	Subdomain *string   `gorm:"column:subdomain;uniqueIndex"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
