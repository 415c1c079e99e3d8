package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPointsEarned(t *testing.T) {
	cases := []struct {
		amount string
		want   int
	}{
		{"0", 0},
		{"99.99", 0},
		{"100", 1},
		{"300", 3},
		{"250.50", 2},
		{"1999.99", 19},
		{"-50", 0},
	}
	for _, c := range cases {
		amount := decimal.RequireFromString(c.amount)
		assert.Equal(t, c.want, PointsEarned(amount), "amount=%s", c.amount)
	}
}

func TestTierFor_Boundaries(t *testing.T) {
	cases := []struct {
		points int
		want   Tier
	}{
		{0, TierNormal},
		{9, TierNormal},
		{10, TierBronze},
		{99, TierBronze},
		{100, TierSilver},
		{499, TierSilver},
		{500, TierGold},
		{999, TierGold},
		{1000, TierPlatinum},
		{5000, TierPlatinum},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TierFor(c.points), "points=%d", c.points)
	}
}

func TestRedeem(t *testing.T) {
	balance, err := Redeem(100, 40)
	assert.NoError(t, err)
	assert.Equal(t, 60, balance)

	// exact balance is allowed
	balance, err = Redeem(40, 40)
	assert.NoError(t, err)
	assert.Equal(t, 0, balance)

	// over-redemption is a hard failure
	_, err = Redeem(5, 8)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// non-positive requests are no-ops
	balance, err = Redeem(5, 0)
	assert.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestClampDiscount(t *testing.T) {
	assert.Equal(t, 5, ClampDiscount(5, 8)) // capped at balance
	assert.Equal(t, 8, ClampDiscount(10, 8))
	assert.Equal(t, 0, ClampDiscount(0, 8))
	assert.Equal(t, 0, ClampDiscount(10, -1))
}
