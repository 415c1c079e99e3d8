package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a read-only view of the catalog, used to enrich bill responses
// with display names. Catalog management is external to this core; sale
// correctness never depends on this row because line prices are captured at
// add-time.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode   string          `gorm:"uniqueIndex;not null"`
	Name      string          `gorm:"index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
