package service

import (
	"context"
	"testing"
	"time"

	"smartpos/internal/dto"
	"smartpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addItem(t *testing.T, f *fixture, sellerID uuid.UUID, productID uuid.UUID, qty int, price string) *dto.BillResponse {
	t.Helper()
	resp, err := f.itemSvc.AddItem(context.Background(), sellerID, dto.AddItemRequest{
		ProductID: productID.String(),
		Qty:       qty,
		Price:     decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return resp
}

func TestOpenOrGetBill_Idempotent(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()

	first, err := f.billSvc.OpenOrGetBill(context.Background(), seller)
	require.NoError(t, err)
	assert.Equal(t, "open", first.Status)
	assert.Empty(t, first.Items)

	second, err := f.billSvc.OpenOrGetBill(context.Background(), seller)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeated calls must return the same open bill")

	// Another seller gets their own bill
	other, err := f.billSvc.OpenOrGetBill(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestHoldCurrentBill_Preconditions(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()

	_, err := f.billSvc.HoldCurrentBill(context.Background(), seller)
	assert.ErrorIs(t, err, ErrNoOpenBill)

	_, err = f.billSvc.OpenOrGetBill(context.Background(), seller)
	require.NoError(t, err)

	_, err = f.billSvc.HoldCurrentBill(context.Background(), seller)
	assert.ErrorIs(t, err, ErrEmptyBill, "empty bills cannot be held")
}

func TestHoldRetrieveRoundTrip(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()

	bill := addItem(t, f, seller, uuid.New(), 2, "150.00")
	billID := uuid.MustParse(bill.ID)

	held, err := f.billSvc.HoldCurrentBill(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, bill.ID, held.BillID)
	assert.Equal(t, "held", held.Status)
	assert.Equal(t, 1, held.ItemCount)
	assert.True(t, held.Amount.Equal(decimal.RequireFromString("300.00")))

	assert.Equal(t, model.BillHeld, f.store.bills[billID].Status)

	retrievedID, err := f.billSvc.RetrieveBill(ctx, seller, uuid.MustParse(held.ID))
	require.NoError(t, err)
	assert.Equal(t, billID, retrievedID)
	assert.Equal(t, model.BillOpen, f.store.bills[billID].Status)

	// The ticket is consumed — retrieving it again fails
	_, err = f.billSvc.RetrieveBill(ctx, seller, uuid.MustParse(held.ID))
	assert.ErrorIs(t, err, ErrHeldBillNotFound)
}

func TestRetrieveBill_ParksCurrentOpenBill(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()

	billA := addItem(t, f, seller, uuid.New(), 1, "100.00")
	heldA, err := f.billSvc.HoldCurrentBill(ctx, seller)
	require.NoError(t, err)

	billB := addItem(t, f, seller, uuid.New(), 1, "200.00")
	require.NotEqual(t, billA.ID, billB.ID)

	_, err = f.billSvc.RetrieveBill(ctx, seller, uuid.MustParse(heldA.ID))
	require.NoError(t, err)

	// A is open again, B was parked under a new ticket — nothing lost,
	// exactly one open bill remains.
	assert.Equal(t, model.BillOpen, f.store.bills[uuid.MustParse(billA.ID)].Status)
	assert.Equal(t, model.BillHeld, f.store.bills[uuid.MustParse(billB.ID)].Status)

	open := 0
	for _, b := range f.store.bills {
		if b.Status == model.BillOpen {
			open++
		}
	}
	assert.Equal(t, 1, open)

	tickets, err := f.billSvc.ListHeldBills(ctx, seller)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, billB.ID, tickets[0].BillID)
}

func TestRetrieveBill_DiscardsEmptyOpenBill(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()

	addItem(t, f, seller, uuid.New(), 1, "100.00")
	held, err := f.billSvc.HoldCurrentBill(ctx, seller)
	require.NoError(t, err)

	empty, err := f.billSvc.OpenOrGetBill(ctx, seller)
	require.NoError(t, err)

	_, err = f.billSvc.RetrieveBill(ctx, seller, uuid.MustParse(held.ID))
	require.NoError(t, err)

	_, exists := f.store.bills[uuid.MustParse(empty.ID)]
	assert.False(t, exists, "empty open bill is discarded, not parked")
}

func TestCheckout_Preconditions(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()
	req := dto.CheckoutRequest{PaymentMethod: "cash", Amount: decimal.RequireFromString("100")}

	_, err := f.billSvc.Checkout(ctx, seller, req)
	assert.ErrorIs(t, err, ErrNoOpenBill)

	_, err = f.billSvc.OpenOrGetBill(ctx, seller)
	require.NoError(t, err)
	_, err = f.billSvc.Checkout(ctx, seller, req)
	assert.ErrorIs(t, err, ErrEmptyBill)
}

func TestCheckout_WithLoyaltyCustomer(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()

	cust, err := f.customerSvc.Register(ctx, seller, dto.RegisterCustomerRequest{Name: "Alice"})
	require.NoError(t, err)

	addItem(t, f, seller, uuid.New(), 3, "100.00")

	resp, err := f.billSvc.Checkout(ctx, seller, dto.CheckoutRequest{
		PaymentMethod: "cash",
		Amount:        decimal.RequireFromString("300.00"),
		CustomerID:    &cust.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "pay", resp.Status)
	assert.NotNil(t, resp.PayDate)
	require.NotNil(t, resp.CustomerID)
	assert.Equal(t, cust.ID, *resp.CustomerID)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("300.00")))
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].TotalPrice.Equal(decimal.RequireFromString("300.00")))
	assert.Equal(t, 3, resp.Items[0].PointsEarned)

	custID := uuid.MustParse(cust.ID)
	stored := f.store.customers[custID]
	assert.Equal(t, 3, stored.Points)
	assert.Equal(t, "NORMAL", stored.Tier)
	assert.True(t, stored.TotalSpent.Equal(decimal.RequireFromString("300.00")))
	assert.NotNil(t, stored.LastPurchase)

	// Balance reconciles against the ledger
	sum, err := f.points.SumByCustomer(ctx, custID)
	require.NoError(t, err)
	assert.Equal(t, int64(stored.Points), sum)

	entries, err := f.points.ListByCustomer(ctx, custID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.PointKindEarn, entries[0].Kind)
	assert.Equal(t, 3, entries[0].Points)
}

func TestCheckout_TierRecompute(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()

	cust, err := f.customerSvc.Register(ctx, seller, dto.RegisterCustomerRequest{Name: "Bob"})
	require.NoError(t, err)
	custID := uuid.MustParse(cust.ID)

	c := f.store.customers[custID]
	c.Points = 98
	c.Tier = "Bronze"
	f.store.customers[custID] = c

	addItem(t, f, seller, uuid.New(), 3, "100.00")
	_, err = f.billSvc.Checkout(ctx, seller, dto.CheckoutRequest{
		PaymentMethod: "cash",
		Amount:        decimal.RequireFromString("300.00"),
		CustomerID:    &cust.ID,
	})
	require.NoError(t, err)

	stored := f.store.customers[custID]
	assert.Equal(t, 101, stored.Points)
	assert.Equal(t, "SILVER", stored.Tier, "crossing 100 points upgrades the tier")
}

func TestCheckout_PointDiscountClamped(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()

	cust, err := f.customerSvc.Register(ctx, seller, dto.RegisterCustomerRequest{Name: "Carol"})
	require.NoError(t, err)
	custID := uuid.MustParse(cust.ID)

	c := f.store.customers[custID]
	c.Points = 5
	f.store.customers[custID] = c

	addItem(t, f, seller, uuid.New(), 1, "50.00")

	redemption := 8
	resp, err := f.billSvc.Checkout(ctx, seller, dto.CheckoutRequest{
		PaymentMethod:   "cash",
		Amount:          decimal.RequireFromString("45.00"),
		CustomerID:      &cust.ID,
		PointRedemption: &redemption,
	})
	require.NoError(t, err)

	// Requested 8, had 5 — clamped to 5, never negative. 50 spent earns 0.
	stored := f.store.customers[custID]
	assert.Equal(t, 0, stored.Points)

	entries, err := f.points.ListByCustomer(ctx, custID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.PointKindDiscount, entries[0].Kind)
	assert.Equal(t, -5, entries[0].Points)

	require.NotNil(t, resp.Description)
	assert.Contains(t, *resp.Description, "point discount: 5")
}

func TestCheckout_UnknownCustomerProceeds(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()

	addItem(t, f, seller, uuid.New(), 1, "100.00")

	unknown := uuid.NewString()
	resp, err := f.billSvc.Checkout(ctx, seller, dto.CheckoutRequest{
		PaymentMethod: "cash",
		Amount:        decimal.RequireFromString("100.00"),
		CustomerID:    &unknown,
	})
	require.NoError(t, err)
	assert.Equal(t, "pay", resp.Status)
	assert.Nil(t, resp.CustomerID, "unknown customer id does not fail the sale")
	assert.Empty(t, f.store.points)
}

func TestCheckout_QtyOverrides(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()
	product := uuid.New()

	addItem(t, f, seller, product, 1, "100.00")

	resp, err := f.billSvc.Checkout(ctx, seller, dto.CheckoutRequest{
		PaymentMethod: "card",
		Amount:        decimal.RequireFromString("400.00"),
		Items:         []dto.CheckoutItemOverride{{ProductID: product.String(), Qty: 4}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 4, resp.Items[0].Qty)
	assert.True(t, resp.Items[0].TotalPrice.Equal(decimal.RequireFromString("400.00")))
}

func TestSweepExpiredHolds(t *testing.T) {
	f := newFixture(24 * time.Hour)
	seller := uuid.New()
	ctx := context.Background()

	stale := addItem(t, f, seller, uuid.New(), 1, "100.00")
	heldStale, err := f.billSvc.HoldCurrentBill(ctx, seller)
	require.NoError(t, err)

	fresh := addItem(t, f, seller, uuid.New(), 1, "200.00")
	heldFresh, err := f.billSvc.HoldCurrentBill(ctx, seller)
	require.NoError(t, err)

	age := func(id string, d time.Duration) {
		h := f.store.holds[uuid.MustParse(id)]
		h.HeldAt = time.Now().Add(d)
		f.store.holds[uuid.MustParse(id)] = h
	}
	age(heldStale.ID, -25*time.Hour)
	age(heldFresh.ID, -23*time.Hour)

	removed, err := f.billSvc.SweepExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Ticket, bill, and items of the stale hold are all gone
	_, ok := f.store.holds[uuid.MustParse(heldStale.ID)]
	assert.False(t, ok)
	_, ok = f.store.bills[uuid.MustParse(stale.ID)]
	assert.False(t, ok)
	for _, it := range f.store.items {
		assert.NotEqual(t, stale.ID, it.BillID.String())
	}

	// The fresh hold survives intact
	_, ok = f.store.holds[uuid.MustParse(heldFresh.ID)]
	assert.True(t, ok)
	_, ok = f.store.bills[uuid.MustParse(fresh.ID)]
	assert.True(t, ok)

	tickets, err := f.billSvc.ListHeldBills(ctx, seller)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, fresh.ID, tickets[0].BillID)
	assert.Equal(t, 1, tickets[0].ItemCount)
}
