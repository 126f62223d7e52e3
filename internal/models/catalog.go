package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogEntry is a flat reference-data row (materials, lasts, soles...).
// Rows are deduplicated on (Category, NameKey) and never updated.
type CatalogEntry struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Category string    `json:"category" gorm:"type:varchar(150);not null;uniqueIndex:idx_catalog_category_name"`
	Code     string    `json:"code" gorm:"type:varchar(150)"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null"`
	NameKey  string    `json:"-" gorm:"type:varchar(255);not null;uniqueIndex:idx_catalog_category_name"`

	CreatedAt time.Time `json:"createdAt"`
}

func (CatalogEntry) TableName() string {
	return "catalog_entries"
}
