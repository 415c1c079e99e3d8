package dto

import (
	"github.com/shopspring/decimal"
)

// HeldBillResponse is one park ticket on the seller's held-bill list.
type HeldBillResponse struct {
	ID        string          `json:"id"`
	BillID    string          `json:"bill_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	ItemCount int             `json:"item_count"`
	HeldAt    string          `json:"held_at"`
}

// RetrieveBillResponse acknowledges a successful retrieve.
type RetrieveBillResponse struct {
	BillID string `json:"bill_id"`
}
