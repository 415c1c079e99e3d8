package dto

import (
	"github.com/shopspring/decimal"
)

// BillItemResponse is one line of a bill as shown to the register UI.
type BillItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	Qty          int             `json:"qty"`
	Price        decimal.Decimal `json:"price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	PointsEarned int             `json:"points_earned"`
}

// BillResponse is the full view of a bill, open or finalized.
type BillResponse struct {
	ID            string             `json:"id"`
	SellerID      string             `json:"seller_id"`
	Status        string             `json:"status"`
	PaymentMethod *string            `json:"payment_method,omitempty"`
	Description   *string            `json:"description,omitempty"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	Items         []BillItemResponse `json:"items"`
	CreatedAt     string             `json:"created_at"`
	PayDate       *string            `json:"pay_date,omitempty"`
}

// AddItemRequest adds (or merges) a product line onto the seller's open bill.
// Price is captured here and never re-read from the catalog.
type AddItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Qty       int             `json:"qty" validate:"required,min=1"`
	Price     decimal.Decimal `json:"price" validate:"min=0"`
}

// UpdateQtyRequest overwrites an item's absolute quantity.
type UpdateQtyRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}
