package service

import (
	"context"
	"time"

	"lumo/task-api/internal/model"
	"lumo/task-api/internal/store"

	"go.uber.org/zap"
)

// SweepResetTokens clears reset tokens that expired before now. Expired
// tokens are already unusable; this only keeps the table tidy.
func SweepResetTokens(ctx context.Context, users store.Store[model.User], now time.Time) (int64, error) {
	return users.UpdateMany(ctx,
		store.Filter{"reset_expires_at": store.Before{T: now}},
		store.Fields{"reset_token": nil, "reset_expires_at": nil},
	)
}

// ResetTokenCleanup periodically sweeps expired reset tokens until ctx is
// cancelled.
func ResetTokenCleanup(ctx context.Context, t time.Duration, users store.Store[model.User]) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Reset token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := SweepResetTokens(ctx, users, now)
				if err != nil {
					zap.L().Error("Failed to clear expired reset tokens", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Debug("Cleared expired reset tokens", zap.Int64("count", n))
				}
			}
		}
	}()
}
