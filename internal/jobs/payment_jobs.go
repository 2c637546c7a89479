package jobs

import (
	"context"
	"time"

	"log/slog"

	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/payment"
)

// StalePaymentAge is how long a payment may sit in pending before the sweep
// marks it failed.
const StalePaymentAge = 24 * time.Hour

// FailedPaymentRetention is how long failed payments are kept before the
// cleanup deletes them.
const FailedPaymentRetention = 365 * 24 * time.Hour

// PaymentSweepJob fails payments stuck in pending.
type PaymentSweepJob struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewPaymentSweepJob creates the stale-payment sweep.
func NewPaymentSweepJob(db *gorm.DB, logger *slog.Logger) *PaymentSweepJob {
	return &PaymentSweepJob{db: db, logger: logger}
}

// Name returns the job name.
func (j *PaymentSweepJob) Name() string { return "payment_sweep" }

// Execute marks pending payments older than 24 hours as failed.
func (j *PaymentSweepJob) Execute(ctx context.Context) error {
	cutoff := time.Now().Add(-StalePaymentAge)

	flipped, err := payment.MarkStalePending(j.db.WithContext(ctx), cutoff)
	if err != nil {
		return err
	}

	if flipped > 0 {
		j.logger.Info("stale pending payments marked failed",
			slog.Int64("count", flipped),
			slog.Time("cutoff", cutoff),
		)
	}
	return nil
}

// PaymentCleanupJob deletes long-failed payments.
type PaymentCleanupJob struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewPaymentCleanupJob creates the old-payment cleanup.
func NewPaymentCleanupJob(db *gorm.DB, logger *slog.Logger) *PaymentCleanupJob {
	return &PaymentCleanupJob{db: db, logger: logger}
}

// Name returns the job name.
func (j *PaymentCleanupJob) Name() string { return "payment_cleanup" }

// Execute deletes failed payments older than a year.
func (j *PaymentCleanupJob) Execute(ctx context.Context) error {
	cutoff := time.Now().Add(-FailedPaymentRetention)

	deleted, err := payment.DeleteOldFailed(j.db.WithContext(ctx), cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.logger.Info("old failed payments deleted",
			slog.Int64("count", deleted),
			slog.Time("cutoff", cutoff),
		)
	}
	return nil
}
