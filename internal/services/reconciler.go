package services

import (
	"log/slog"
	"time"

	"github.com/codeversity/backend/internal/models"
)

const (
	reconcileInterval = 10 * time.Minute
	pendingTTL        = 24 * time.Hour
	reconcileBatch    = 50
)

// StartReconciler runs a goroutine that periodically repairs the two known
// drift modes of the payment flow: checkouts abandoned mid-flow (payment rows
// stuck in pending forever) and completed payments whose membership write
// never landed.
func (s *PaymentService) StartReconciler(done chan struct{}) {
	go func() {
		ticker := time.NewTicker(reconcileInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.expireStalePending()
				s.applyUnappliedCompleted()
			case <-done:
				return
			}
		}
	}()
}

// expireStalePending fails pending payments older than the TTL. The gateway's
// own checkout timeout is far shorter, so anything this old was abandoned.
func (s *PaymentService) expireStalePending() {
	cutoff := time.Now().Add(-pendingTTL)
	result := s.db.Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.PaymentStatusPending, cutoff).
		Update("status", models.PaymentStatusFailed)
	if result.Error != nil {
		slog.Error("stale pending payment sweep failed", "error", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		slog.Info("expired stale pending payments", "count", result.RowsAffected)
	}
}

// applyUnappliedCompleted re-derives membership state from completed payments
// that never got linked to a membership. Activation is idempotent, so
// retrying here is always safe.
func (s *PaymentService) applyUnappliedCompleted() {
	var payments []models.Payment
	if err := s.db.
		Where("status = ? AND applied_at IS NULL", models.PaymentStatusCompleted).
		Order("created_at ASC").
		Limit(reconcileBatch).
		Find(&payments).Error; err != nil {
		slog.Error("unapplied payment lookup failed", "error", err)
		return
	}

	for i := range payments {
		payment := &payments[i]
		plan, err := s.plans.GetByID(payment.PlanID)
		if err != nil {
			slog.Error("reconciler could not resolve plan for payment",
				"payment_id", payment.ID.String(), "plan_id", payment.PlanID.String(), "error", err)
			continue
		}
		if _, err := s.memberships.Activate(payment, plan); err != nil {
			slog.Error("reconciler activation retry failed",
				"action", "activation_inconsistency",
				"payment_id", payment.ID.String(), "error", err)
			continue
		}
		slog.Info("reconciler applied completed payment",
			"payment_id", payment.ID.String(), "user_id", payment.UserID.String())
	}
}
