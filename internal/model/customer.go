package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a loyalty account owned by a seller.
// Points never go negative; Tier is a pure function of Points (see the
// loyalty package) and is recomputed on every points mutation.
type Customer struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SellerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"not null"`
	Phone    *string   `gorm:"type:varchar(30)"`
	Email    *string
	Points   int `gorm:"not null;default:0"`
	// Tier: NORMAL < Bronze < SILVER < GOLD < PLATINUM
	Tier       string          `gorm:"type:varchar(20);not null;default:'NORMAL'"`
	TotalSpent decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// PointsExpireDate is informational — expiry enforcement is out of scope.
	PointsExpireDate *time.Time
	LastPurchase     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
