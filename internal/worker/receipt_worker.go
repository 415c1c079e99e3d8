package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: fetches the finalized bill,
// renders the thermal-style PDF receipt and, when the sale was attributed to
// a customer with an email on file, enqueues a follow-up email job.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smartpos/internal/infra"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	BillID        string  `json:"bill_id"`
	CustomerEmail *string `json:"customer_email,omitempty"`
}

// ReceiptWorker renders PDF receipts for finalized bills.
type ReceiptWorker struct {
	bills          repository.BillRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
	storeName      string
}

func NewReceiptWorker(bills repository.BillRepository, dispatcher *Dispatcher, pdfStoragePath, storeName string) *ReceiptWorker {
	return &ReceiptWorker{
		bills:          bills,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
		storeName:      storeName,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJobPayload from the job envelope
//  2. Fetch the finalized bill (with items and products)
//  3. Render the PDF receipt
//  4. Enqueue an email job when a customer email was provided
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	billID, err := uuid.Parse(payload.BillID)
	if err != nil {
		log.Error().Str("bill_id", payload.BillID).Msg("receipt_worker: invalid bill_id")
		return
	}

	bill, err := w.bills.FindByID(ctx, billID)
	if err != nil {
		log.Error().Err(err).Str("bill_id", payload.BillID).Msg("receipt_worker: bill not found")
		return
	}

	pdfPath, err := infra.GenerateReceiptPDF(bill, w.pdfStoragePath, w.storeName)
	if err != nil {
		log.Error().Err(err).Str("bill_id", payload.BillID).Msg("receipt_worker: PDF generation failed")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("bill_id", payload.BillID).Msg("receipt_worker: receipt generated")

	if payload.CustomerEmail != nil && *payload.CustomerEmail != "" {
		emailJob := EmailJobPayload{
			ToEmail: *payload.CustomerEmail,
			Subject: fmt.Sprintf("%s — your receipt", w.storeName),
			Body:    fmt.Sprintf("Thank you for your purchase.\nTotal: $%s", bill.TotalAmount.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *payload.CustomerEmail).Msg("receipt_worker: failed to enqueue email")
		}
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
