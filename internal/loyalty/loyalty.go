// Package loyalty implements the pure point and membership-tier rules.
// Nothing here touches storage — callers persist the results inside their own
// transaction scope.
package loyalty

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInsufficientPoints is returned by Redeem when the requested amount
// exceeds the customer's balance.
var ErrInsufficientPoints = errors.New("insufficient points for redemption")

// Tier is a membership level driven purely by the points balance.
type Tier string

const (
	TierNormal   Tier = "NORMAL"
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// pointsPerCurrencyUnit: one point per full 100 of spend.
var pointsPerCurrencyUnit = decimal.NewFromInt(100)

// tierThresholds, highest first. Boundaries are inclusive at the lower bound.
var tierThresholds = []struct {
	min  int
	tier Tier
}{
	{1000, TierPlatinum},
	{500, TierGold},
	{100, TierSilver},
	{10, TierBronze},
}

// PointsEarned returns floor(amount / 100). Non-positive amounts earn nothing.
func PointsEarned(amount decimal.Decimal) int {
	if amount.Sign() <= 0 {
		return 0
	}
	return int(amount.Div(pointsPerCurrencyUnit).IntPart())
}

// TierFor maps a points balance to its membership tier.
func TierFor(points int) Tier {
	for _, t := range tierThresholds {
		if points >= t.min {
			return t.tier
		}
	}
	return TierNormal
}

// Redeem validates a reward redemption and returns the decremented balance.
// Strict: requesting more than the balance fails with ErrInsufficientPoints.
func Redeem(balance, requested int) (int, error) {
	if requested <= 0 {
		return balance, nil
	}
	if requested > balance {
		return balance, ErrInsufficientPoints
	}
	return balance - requested, nil
}

// ClampDiscount returns the number of points actually usable as a payment
// discount: the requested amount clamped to the balance, never negative.
// Unlike Redeem, asking for more than the balance is not an error at the
// register — the discount is simply capped.
func ClampDiscount(balance, requested int) int {
	if requested <= 0 || balance <= 0 {
		return 0
	}
	if requested > balance {
		return balance
	}
	return requested
}
