package model

import (
	"time"

	"github.com/google/uuid"
)

// Point transaction kinds.
const (
	PointKindEarn     = "EARN"
	PointKindRedeem   = "REDEEM_REWARD"
	PointKindDiscount = "DISCOUNT"
)

// PointTransaction is an append-only loyalty ledger entry. Entries are NEVER
// modified or deleted once written — the customer's balance must equal the
// initial balance plus the sum of these rows at all times.
type PointTransaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Points is signed: positive = accrual, negative = redemption/discount.
	Points      int    `gorm:"not null"`
	Kind        string `gorm:"type:varchar(20);not null"`
	Description string `gorm:"not null"`
	CreatedAt   time.Time
}
