package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HeldBillStatus values. A live ticket is always "held"; consumed tickets are
// deleted rather than archived, so "retrieved"/"cancelled" only appear
// transiently in logs and responses.
const (
	HeldBillStatusHeld      = "held"
	HeldBillStatusRetrieved = "retrieved"
	HeldBillStatusCancelled = "cancelled"
)

// HeldBill is a park ticket: a detached record of a bill put aside so the
// seller can serve another customer. It exists only while the referenced Bill
// has status "held" — the pair transitions together inside one transaction,
// and the janitor removes both together once the ticket expires.
type HeldBill struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SellerID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Amount is the Σ(qty×price) captured at hold time, shown on the
	// park-ticket list so the seller can tell tickets apart.
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status string          `gorm:"type:varchar(20);not null;default:'held'"`
	HeldAt time.Time       `gorm:"not null;index"`

	Bill *Bill `gorm:"foreignKey:BillID"`
}
