package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus is the lifecycle state of a sale.
// "pay" is terminal — there is no void/chargeback operation.
type BillStatus string

const (
	BillOpen BillStatus = "open"
	BillHeld BillStatus = "held"
	BillPaid BillStatus = "pay"
)

// billTransitions is the closed transition table. Anything not listed here
// (pay→anything, held→pay, …) is rejected by the service layer.
var billTransitions = map[BillStatus]map[BillStatus]bool{
	BillOpen: {BillHeld: true, BillPaid: true},
	BillHeld: {BillOpen: true},
}

// CanTransitionTo reports whether s → next is an allowed lifecycle step.
func (s BillStatus) CanTransitionTo(next BillStatus) bool {
	return billTransitions[s][next]
}

// Bill is one sale transaction owned by one seller.
// Invariant: at most one Bill per seller may be in status "open" at any time
// (enforced by the partial unique index uni_bills_seller_open).
type Bill struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SellerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status   BillStatus `gorm:"type:varchar(10);not null;default:'open'"`
	// PaymentMethod is an opaque label chosen by the operator ("cash",
	// "transfer", "qr", …) — no gateway integration behind it.
	PaymentMethod *string `gorm:"type:varchar(30)"`
	// Description records mixed-payment and point-discount notes.
	Description *string
	// TotalAmount is the amount tendered, set once at checkout.
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CustomerID  *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt   time.Time
	// PayDate stays null until checkout finalizes the bill.
	PayDate *time.Time

	Items    []BillItem `gorm:"foreignKey:BillID"`
	Customer *Customer  `gorm:"foreignKey:CustomerID"`
}

// BillItem is one product line on a bill. At most one row exists per
// (bill, product) pair while the bill is open — re-adding the same product
// merges by summing quantity (see uniqueIndex idx_bill_product).
type BillItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BillID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bill_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bill_product"`
	// Price is captured at add-time and never re-read from the catalog.
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Qty   int             `gorm:"not null"`
	// TotalPrice (qty × price) is frozen at checkout, zero before that.
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// CustomerID and PointsEarned stay null/0 until checkout — a customer
	// may be attached only at payment time.
	CustomerID   *uuid.UUID `gorm:"type:uuid"`
	PointsEarned int        `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
