package dto

import (
	"github.com/shopspring/decimal"
)

// CheckoutItemOverride lets the register screen adjust a line quantity at
// payment time; it matches an existing open-bill line by product.
type CheckoutItemOverride struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

// CheckoutRequest finalizes the seller's open bill.
// CustomerID is optional — a sale need not be attributed to a loyalty
// account, and an unknown id is treated as "no customer" rather than failing
// the sale. PointRedemption is clamped to the customer's balance.
type CheckoutRequest struct {
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
	Amount          decimal.Decimal        `json:"amount" validate:"required"`
	Items           []CheckoutItemOverride `json:"items" validate:"omitempty,dive"`
	CustomerID      *string                `json:"customer_id,omitempty"`
	Description     *string                `json:"description,omitempty"`
	PointRedemption *int                   `json:"point_redemption,omitempty" validate:"omitempty,min=0"`
}
