package dto

import (
	"github.com/shopspring/decimal"
)

// PriceCheckResponse answers the public barcode price lookup.
type PriceCheckResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}
