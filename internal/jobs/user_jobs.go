package jobs

import (
	"context"
	"time"

	"log/slog"

	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/user"
)

// InactivityThreshold is how long an account may go without logging in
// before the deactivation job disables it.
const InactivityThreshold = 30 * 24 * time.Hour

// UserDeactivationJob disables accounts that stopped logging in.
type UserDeactivationJob struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserDeactivationJob creates the inactive-user deactivation job.
func NewUserDeactivationJob(db *gorm.DB, logger *slog.Logger) *UserDeactivationJob {
	return &UserDeactivationJob{db: db, logger: logger}
}

// Name returns the job name.
func (j *UserDeactivationJob) Name() string { return "user_deactivation" }

// Execute deactivates accounts whose last login is more than 30 days old.
// Staff and superuser accounts are exempt.
func (j *UserDeactivationJob) Execute(ctx context.Context) error {
	cutoff := time.Now().Add(-InactivityThreshold)

	deactivated, err := user.DeactivateInactive(j.db.WithContext(ctx), cutoff)
	if err != nil {
		return err
	}

	if deactivated > 0 {
		j.logger.Info("inactive users deactivated",
			slog.Int64("count", deactivated),
			slog.Time("cutoff", cutoff),
		)
	}
	return nil
}
