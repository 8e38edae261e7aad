package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/achievo/achievement-portal/internal/db"
	"github.com/achievo/achievement-portal/internal/verify"
)

// EmailRetry re-sends decision mail for terminal achievements whose
// notification never went out. Delivery stays best-effort; anything still
// undelivered is picked up on the next tick.
func EmailRetry(store *db.Store, mailer verify.Notifier, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		due, err := store.ListUnnotified(ctx, 50)
		if err != nil {
			return err
		}
		sent := 0
		for _, u := range due {
			if !mailer.SendDecision(ctx, u.Email, u.Decision, u.Notes) {
				continue
			}
			if err := store.MarkEmailSent(ctx, u.ID, time.Now()); err != nil {
				log.Warn("email retry: mark sent failed", zap.String("id", u.ID.String()), zap.Error(err))
				continue
			}
			sent++
		}
		if len(due) > 0 {
			log.Info("email retry pass", zap.Int("due", len(due)), zap.Int("sent", sent))
		}
		return nil
	}
}
