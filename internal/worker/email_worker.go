package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the PDF receipt to the
// customer's inbox via SMTP. Deliveries run through the circuit breaker so a
// downed mail relay fast-fails instead of stalling the pool; exhausted
// retries land in the dead letter queue.

import (
	"context"
	"encoding/json"
	"fmt"

	"smartpos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxEmailAttempts = 3

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// EmailWorker delivers receipt emails through SMTP.
type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	rdb    *redis.Client
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, rdb: rdb}
}

// Process sends an email with the PDF receipt as attachment.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}

	sendErr := withRetry(ctx, maxEmailAttempts, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.mailer.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		})
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("to", payload.ToEmail).
				Msg("email_worker: delivery attempt failed")
		}
		return err
	})
	if sendErr != nil {
		SendToDLQ(ctx, w.rdb, QueueEmail, "email", raw,
			fmt.Sprintf("max retries (%d) exceeded: %s", maxEmailAttempts, sendErr),
			maxEmailAttempts)
		return
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: receipt sent")
}
