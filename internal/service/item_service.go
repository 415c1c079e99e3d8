package service

import (
	"context"
	"errors"

	"smartpos/internal/dto"
	"smartpos/internal/model"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemService is the line-item aggregator for the seller's open bill.
// Adding a product that already has a line merges by summing quantity
// instead of creating a duplicate row.
type ItemService interface {
	// AddItem appends or merges a product line; it opens a bill first when
	// the seller has none.
	AddItem(ctx context.Context, sellerID uuid.UUID, req dto.AddItemRequest) (*dto.BillResponse, error)
	UpdateQty(ctx context.Context, sellerID, itemID uuid.UUID, qty int) (*dto.BillResponse, error)
	RemoveItem(ctx context.Context, sellerID, itemID uuid.UUID) error
	// ClearBill removes every line from the named bill but keeps the bill.
	// The bill must be the seller's open bill: a stale or foreign id fails
	// with ErrNoOpenBill, a held/paid bill with ErrBillNotOpen.
	ClearBill(ctx context.Context, sellerID, billID uuid.UUID) error
}

type itemService struct {
	bills repository.BillRepository
	items repository.BillItemRepository
}

func NewItemService(bills repository.BillRepository, items repository.BillItemRepository) ItemService {
	return &itemService{bills: bills, items: items}
}

func (s *itemService) AddItem(ctx context.Context, sellerID uuid.UUID, req dto.AddItemRequest) (*dto.BillResponse, error) {
	if req.Qty < 1 {
		return nil, ErrInvalidQty
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	var billID uuid.UUID
	txErr := runTx(ctx, s.bills.DB(), func(tx *gorm.DB) error {
		bill, err := s.bills.FindOpenBySellerTx(ctx, tx, sellerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bill = &model.Bill{SellerID: sellerID, Status: model.BillOpen, TotalAmount: decimal.Zero}
			if cerr := s.bills.Create(ctx, tx, bill); cerr != nil {
				if errors.Is(cerr, gorm.ErrDuplicatedKey) {
					return ErrOpenBillConflict
				}
				return cerr
			}
		} else if err != nil {
			return err
		}
		billID = bill.ID

		existing, err := s.items.FindByBillAndProductTx(ctx, tx, bill.ID, productID)
		switch {
		case err == nil:
			return s.items.AddQtyTx(ctx, tx, existing.ID, req.Qty)
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &model.BillItem{
				BillID:    bill.ID,
				ProductID: productID,
				Price:     req.Price,
				Qty:       req.Qty,
			}
			if cerr := s.items.CreateTx(ctx, tx, item); cerr != nil {
				if errors.Is(cerr, gorm.ErrDuplicatedKey) {
					// Another request created the same line between our
					// lookup and insert.
					return ErrOpenBillConflict
				}
				return cerr
			}
			return nil
		default:
			return err
		}
	})
	if txErr != nil {
		return nil, txErr
	}

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	return billToResponse(bill), nil
}

func (s *itemService) UpdateQty(ctx context.Context, sellerID, itemID uuid.UUID, qty int) (*dto.BillResponse, error) {
	if qty < 1 {
		return nil, ErrInvalidQty
	}

	var billID uuid.UUID
	txErr := runTx(ctx, s.bills.DB(), func(tx *gorm.DB) error {
		bill, err := s.ownedOpenItemBill(ctx, tx, sellerID, itemID)
		if err != nil {
			return err
		}
		billID = bill.ID
		if uerr := s.items.UpdateQtyTx(ctx, tx, itemID, qty); uerr != nil {
			if errors.Is(uerr, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return uerr
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	bill, err := s.bills.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	return billToResponse(bill), nil
}

func (s *itemService) RemoveItem(ctx context.Context, sellerID, itemID uuid.UUID) error {
	return runTx(ctx, s.bills.DB(), func(tx *gorm.DB) error {
		if _, err := s.ownedOpenItemBill(ctx, tx, sellerID, itemID); err != nil {
			return err
		}
		return s.items.DeleteTx(ctx, tx, itemID)
	})
}

func (s *itemService) ClearBill(ctx context.Context, sellerID, billID uuid.UUID) error {
	return runTx(ctx, s.bills.DB(), func(tx *gorm.DB) error {
		bill, err := s.bills.FindByIDTx(ctx, tx, billID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoOpenBill
			}
			return err
		}
		// A stale id (e.g. after a hold/retrieve swap on another terminal)
		// must never wipe a different bill's lines.
		if bill.SellerID != sellerID {
			return ErrNoOpenBill
		}
		if bill.Status != model.BillOpen {
			return ErrBillNotOpen
		}
		return s.items.DeleteByBillTx(ctx, tx, bill.ID)
	})
}

// ownedOpenItemBill resolves an item to its bill and verifies the bill belongs
// to the seller and is still open. Ownership failures report ErrItemNotFound
// rather than leaking another seller's bill state.
func (s *itemService) ownedOpenItemBill(ctx context.Context, tx *gorm.DB, sellerID, itemID uuid.UUID) (*model.Bill, error) {
	item, err := s.items.FindByIDTx(ctx, tx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	bill, err := s.bills.FindByIDTx(ctx, tx, item.BillID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if bill.SellerID != sellerID {
		return nil, ErrItemNotFound
	}
	if bill.Status != model.BillOpen {
		return nil, ErrBillNotOpen
	}
	return bill, nil
}
