package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartpos/internal/dto"
	"smartpos/internal/loyalty"
	"smartpos/internal/model"
	"smartpos/internal/repository"
	"smartpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillService is the bill lifecycle manager: open → (hold ⇄ retrieve) → pay.
// Every multi-record mutation runs inside one transaction scope.
type BillService interface {
	OpenOrGetBill(ctx context.Context, sellerID uuid.UUID) (*dto.BillResponse, error)
	HoldCurrentBill(ctx context.Context, sellerID uuid.UUID) (*dto.HeldBillResponse, error)
	RetrieveBill(ctx context.Context, sellerID, heldBillID uuid.UUID) (uuid.UUID, error)
	Checkout(ctx context.Context, sellerID uuid.UUID, req dto.CheckoutRequest) (*dto.BillResponse, error)
	// ListHeldBills sweeps expired park tickets (any seller) before
	// returning the caller's list.
	ListHeldBills(ctx context.Context, sellerID uuid.UUID) ([]dto.HeldBillResponse, error)
	// SweepExpiredHolds removes park tickets older than the retention
	// window together with their underlying held bills. Returns the number
	// of tickets removed. Also driven periodically by the hold janitor.
	SweepExpiredHolds(ctx context.Context) (int, error)
}

type billService struct {
	bills      repository.BillRepository
	items      repository.BillItemRepository
	held       repository.HeldBillRepository
	customers  repository.CustomerRepository
	points     repository.PointTransactionRepository
	dispatcher *worker.Dispatcher
	holdTTL    time.Duration
}

func NewBillService(
	bills repository.BillRepository,
	items repository.BillItemRepository,
	held repository.HeldBillRepository,
	customers repository.CustomerRepository,
	points repository.PointTransactionRepository,
	dispatcher *worker.Dispatcher,
	holdTTL time.Duration,
) BillService {
	if holdTTL <= 0 {
		holdTTL = 24 * time.Hour
	}
	return &billService{
		bills:      bills,
		items:      items,
		held:       held,
		customers:  customers,
		points:     points,
		dispatcher: dispatcher,
		holdTTL:    holdTTL,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── OpenOrGetBill ─────────────────────────────────────────────────────────────

// OpenOrGetBill returns the seller's current open bill, creating an empty one
// if none exists. Idempotent under concurrent calls: the partial unique index
// on (seller_id) WHERE status='open' rejects the loser, which then re-fetches.
func (s *billService) OpenOrGetBill(ctx context.Context, sellerID uuid.UUID) (*dto.BillResponse, error) {
	bill, err := s.bills.FindOpenBySeller(ctx, sellerID)
	if err == nil {
		return billToResponse(bill), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	bill = &model.Bill{SellerID: sellerID, Status: model.BillOpen, TotalAmount: decimal.Zero}
	if err := s.bills.Create(ctx, nil, bill); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race — the other request's bill is ours to reuse.
			existing, ferr := s.bills.FindOpenBySeller(ctx, sellerID)
			if ferr != nil {
				return nil, ErrOpenBillConflict
			}
			return billToResponse(existing), nil
		}
		return nil, err
	}
	return billToResponse(bill), nil
}

// ── HoldCurrentBill ───────────────────────────────────────────────────────────

// HoldCurrentBill parks the seller's open bill: captures the running total,
// writes the park ticket, and flips the bill open→held. Both writes commit or
// neither does.
func (s *billService) HoldCurrentBill(ctx context.Context, sellerID uuid.UUID) (*dto.HeldBillResponse, error) {
	var held *model.HeldBill
	var itemCount int

	txErr := runTx(ctx, s.bills.DB(), func(tx *gorm.DB) error {
		bill, err := s.bills.FindOpenBySellerTx(ctx, tx, sellerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoOpenBill
			}
			return err
		}
		items, err := s.items.ListByBillTx(ctx, tx, bill.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyBill
		}
		itemCount = len(items)
		held, err = s.parkTx(ctx, tx, bill, items)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return heldToResponse(held, itemCount), nil
}

// parkTx writes a park ticket for bill and flips it open→held.
// Must run inside the caller's transaction with the bill row locked.
func (s *billService) parkTx(ctx context.Context, tx *gorm.DB, bill *model.Bill, items []model.BillItem) (*model.HeldBill, error) {
	if !bill.Status.CanTransitionTo(model.BillHeld) {
		return nil, ErrBillNotOpen
	}

	amount := decimal.Zero
	for _, it := range items {
		amount = amount.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}

	held := &model.HeldBill{
		BillID:   bill.ID,
		SellerID: bill.SellerID,
		Amount:   amount,
		Status:   model.HeldBillStatusHeld,
		HeldAt:   time.Now(),
	}
	if err := s.held.CreateTx(ctx, tx, held); err != nil {
		return nil, err
	}
	if err := s.bills.UpdateStatusTx(ctx, tx, bill.ID, model.BillOpen, model.BillHeld); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpenBillConflict
		}
		return nil, err
	}
	return held, nil
}

// ── RetrieveBill ──────────────────────────────────────────────────────────────

// RetrieveBill resumes a parked bill in two phases inside one transaction.
// Phase 1: the currently open bill (if any) is parked when it has items, or
// deleted when empty — never silently lost. Phase 2: the target ticket is
// consumed and its bill flipped held→open. The seller always ends with
// exactly one open bill.
func (s *billService) RetrieveBill(ctx context.Context, sellerID, heldBillID uuid.UUID) (uuid.UUID, error) {
	var billID uuid.UUID

	txErr := runTx(ctx, s.bills.DB(), func(tx *gorm.DB) error {
		current, err := s.bills.FindOpenBySellerTx(ctx, tx, sellerID)
		switch {
		case err == nil:
			items, lerr := s.items.ListByBillTx(ctx, tx, current.ID)
			if lerr != nil {
				return lerr
			}
			if len(items) > 0 {
				if _, perr := s.parkTx(ctx, tx, current, items); perr != nil {
					return perr
				}
			} else if derr := s.bills.DeleteTx(ctx, tx, current.ID, model.BillOpen); derr != nil {
				return derr
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// nothing to park
		default:
			return err
		}

		ticket, err := s.held.FindForSellerTx(ctx, tx, heldBillID, sellerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHeldBillNotFound
			}
			return err
		}
		if err := s.held.DeleteTx(ctx, tx, ticket.ID); err != nil {
			return err
		}
		if err := s.bills.UpdateStatusTx(ctx, tx, ticket.BillID, model.BillHeld, model.BillOpen); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Ticket pointed at a bill that is gone or no longer
				// held — orphaned ticket from pre-redesign data.
				return ErrHeldBillNotFound
			}
			return err
		}
		billID = ticket.BillID
		return nil
	})
	if txErr != nil {
		return uuid.Nil, txErr
	}
	return billID, nil
}

// ── Checkout ──────────────────────────────────────────────────────────────────

// Checkout finalizes the seller's open bill as one atomic unit: line totals
// and points are frozen, the optional point discount is applied, the bill
// flips open→pay, and the customer's balance/tier/lifetime spend are updated.
// Partial application is impossible — every write happens in one transaction
// with the bill and customer rows locked.
func (s *billService) Checkout(ctx context.Context, sellerID uuid.UUID, req dto.CheckoutRequest) (*dto.BillResponse, error) {
	var bill *model.Bill
	var customerEmail *string

	txErr := runTx(ctx, s.bills.DB(), func(tx *gorm.DB) error {
		b, err := s.bills.FindOpenBySellerTx(ctx, tx, sellerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoOpenBill
			}
			return err
		}
		items, err := s.items.ListByBillTx(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyBill
		}

		// Register-screen quantity overrides, applied before totals freeze.
		if len(req.Items) > 0 {
			overrides := make(map[uuid.UUID]int, len(req.Items))
			for _, ov := range req.Items {
				if pid, perr := uuid.Parse(ov.ProductID); perr == nil && ov.Qty >= 1 {
					overrides[pid] = ov.Qty
				}
			}
			for i := range items {
				if qty, ok := overrides[items[i].ProductID]; ok {
					items[i].Qty = qty
				}
			}
		}

		// An unknown or malformed customer id does not fail the sale —
		// it is simply not attributed to a loyalty account.
		var customer *model.Customer
		if req.CustomerID != nil {
			if cid, perr := uuid.Parse(*req.CustomerID); perr == nil {
				if c, ferr := s.customers.FindByIDTx(ctx, tx, cid); ferr == nil {
					customer = c
				}
			}
		}

		now := time.Now()
		saleTotal := decimal.Zero
		earned := 0
		for i := range items {
			it := &items[i]
			it.TotalPrice = it.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
			saleTotal = saleTotal.Add(it.TotalPrice)
			if customer != nil {
				it.CustomerID = &customer.ID
				it.PointsEarned = loyalty.PointsEarned(it.TotalPrice)
				earned += it.PointsEarned
			}
			if serr := s.items.SaveTx(ctx, tx, it); serr != nil {
				return serr
			}
		}

		description := ""
		if req.Description != nil {
			description = *req.Description
		}

		// Point discount: clamped to the balance, ledgered as a negative
		// DISCOUNT entry, noted on the bill.
		if customer != nil && req.PointRedemption != nil && *req.PointRedemption > 0 {
			redeemed := loyalty.ClampDiscount(customer.Points, *req.PointRedemption)
			if redeemed > 0 {
				customer.Points -= redeemed
				entry := &model.PointTransaction{
					CustomerID:  customer.ID,
					Points:      -redeemed,
					Kind:        model.PointKindDiscount,
					Description: fmt.Sprintf("Used %d points as payment discount", redeemed),
				}
				if cerr := s.points.CreateTx(ctx, tx, entry); cerr != nil {
					return cerr
				}
				note := fmt.Sprintf("point discount: %d", redeemed)
				if description != "" {
					description = description + " | " + note
				} else {
					description = note
				}
			}
		}

		if !b.Status.CanTransitionTo(model.BillPaid) {
			return ErrBillNotOpen
		}
		b.Status = model.BillPaid
		b.PayDate = &now
		b.PaymentMethod = &req.PaymentMethod
		b.TotalAmount = req.Amount
		if description != "" {
			b.Description = &description
		}
		if customer != nil {
			b.CustomerID = &customer.ID
		}
		if serr := s.bills.SaveTx(ctx, tx, b); serr != nil {
			return serr
		}

		if customer != nil {
			if earned > 0 {
				entry := &model.PointTransaction{
					CustomerID:  customer.ID,
					Points:      earned,
					Kind:        model.PointKindEarn,
					Description: fmt.Sprintf("Points earned from sale %s", b.ID),
				}
				if cerr := s.points.CreateTx(ctx, tx, entry); cerr != nil {
					return cerr
				}
				customer.Points += earned
			}
			customer.Tier = string(loyalty.TierFor(customer.Points))
			customer.TotalSpent = customer.TotalSpent.Add(saleTotal)
			customer.LastPurchase = &now
			if serr := s.customers.SaveTx(ctx, tx, customer); serr != nil {
				return serr
			}
			customerEmail = customer.Email
		}

		b.Items = items
		bill = b
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Receipt job — best-effort, fire & forget.
	if s.dispatcher != nil {
		payload := worker.ReceiptJobPayload{BillID: bill.ID.String(), CustomerEmail: customerEmail}
		if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Warn().Err(err).Str("bill_id", bill.ID.String()).Msg("failed to enqueue receipt job")
		}
	}

	return billToResponse(bill), nil
}

// ── Held-bill listing & janitor sweep ─────────────────────────────────────────

func (s *billService) ListHeldBills(ctx context.Context, sellerID uuid.UUID) ([]dto.HeldBillResponse, error) {
	// Best-effort sweep before listing; a sweep failure must not block the
	// seller from seeing their tickets.
	if _, err := s.SweepExpiredHolds(ctx); err != nil {
		log.Warn().Err(err).Msg("hold sweep failed during listing")
	}

	holds, err := s.held.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HeldBillResponse, 0, len(holds))
	for i := range holds {
		itemCount := 0
		if holds[i].Bill != nil {
			itemCount = len(holds[i].Bill.Items)
		}
		out = append(out, *heldToResponse(&holds[i], itemCount))
	}
	return out, nil
}

func (s *billService) SweepExpiredHolds(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.holdTTL)
	removed := 0

	txErr := runTx(ctx, s.held.DB(), func(tx *gorm.DB) error {
		expired, err := s.held.ListExpiredTx(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		for _, h := range expired {
			// The parked bill goes with its ticket — both removed in
			// the same transaction so no orphaned "held" bill survives.
			if err := s.items.DeleteByBillTx(ctx, tx, h.BillID); err != nil {
				return err
			}
			if err := s.bills.DeleteTx(ctx, tx, h.BillID, model.BillHeld); err != nil {
				return err
			}
			if err := s.held.DeleteTx(ctx, tx, h.ID); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if txErr != nil {
		return 0, txErr
	}
	if removed > 0 {
		log.Info().Int("count", removed).Msg("expired held bills swept")
	}
	return removed, nil
}

// ── Response mapping ──────────────────────────────────────────────────────────

func billToResponse(b *model.Bill) *dto.BillResponse {
	items := make([]dto.BillItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, dto.BillItemResponse{
			ID:           it.ID.String(),
			ProductID:    it.ProductID.String(),
			ProductName:  name,
			Qty:          it.Qty,
			Price:        it.Price,
			TotalPrice:   it.TotalPrice,
			PointsEarned: it.PointsEarned,
		})
	}

	resp := &dto.BillResponse{
		ID:            b.ID.String(),
		SellerID:      b.SellerID.String(),
		Status:        string(b.Status),
		PaymentMethod: b.PaymentMethod,
		Description:   b.Description,
		TotalAmount:   b.TotalAmount,
		Items:         items,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
	if b.CustomerID != nil {
		id := b.CustomerID.String()
		resp.CustomerID = &id
	}
	if b.PayDate != nil {
		d := b.PayDate.Format(time.RFC3339)
		resp.PayDate = &d
	}
	return resp
}

func heldToResponse(h *model.HeldBill, itemCount int) *dto.HeldBillResponse {
	return &dto.HeldBillResponse{
		ID:        h.ID.String(),
		BillID:    h.BillID.String(),
		Amount:    h.Amount,
		Status:    h.Status,
		ItemCount: itemCount,
		HeldAt:    h.HeldAt.Format(time.RFC3339),
	}
}
