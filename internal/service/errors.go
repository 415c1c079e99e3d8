package service

import "errors"

// Sentinel errors surfaced to the handler layer, which maps them onto HTTP
// status + machine codes. Precondition and validation failures reject the
// operation before any mutation; ErrOpenBillConflict is the one retryable
// kind — callers should re-fetch the open bill and retry the whole operation.
var (
	ErrNoOpenBill       = errors.New("seller has no open bill")
	ErrEmptyBill        = errors.New("bill has no line items")
	ErrBillNotOpen      = errors.New("bill is not open")
	ErrHeldBillNotFound = errors.New("held bill not found")
	ErrItemNotFound     = errors.New("line item not found")
	ErrInvalidQty       = errors.New("quantity must be at least 1")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrOpenBillConflict = errors.New("concurrent update on the seller's open bill, retry")
)
