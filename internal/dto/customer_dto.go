package dto

import (
	"github.com/shopspring/decimal"
)

// RegisterCustomerRequest creates a loyalty account under the calling seller.
type RegisterCustomerRequest struct {
	Name  string  `json:"name" validate:"required"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// RedeemRewardRequest spends points on a named reward. Strict: redeeming more
// than the balance is rejected, unlike the clamped checkout discount.
type RedeemRewardRequest struct {
	Points int    `json:"points" validate:"required,min=1"`
	Reward string `json:"reward" validate:"required"`
}

// PointTransactionResponse is one immutable ledger entry.
type PointTransactionResponse struct {
	ID          string `json:"id"`
	Points      int    `json:"points"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// CustomerResponse is the loyalty-account view. History is populated only on
// single-customer fetches.
type CustomerResponse struct {
	ID               string                     `json:"id"`
	Name             string                     `json:"name"`
	Phone            *string                    `json:"phone,omitempty"`
	Email            *string                    `json:"email,omitempty"`
	Points           int                        `json:"points"`
	Tier             string                     `json:"tier"`
	TotalSpent       decimal.Decimal            `json:"total_spent"`
	PointsExpireDate *string                    `json:"points_expire_date,omitempty"`
	LastPurchase     *string                    `json:"last_purchase,omitempty"`
	History          []PointTransactionResponse `json:"history,omitempty"`
}
