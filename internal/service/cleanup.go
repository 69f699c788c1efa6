package service

import (
	"bitwise74/drive-api/internal/repository"
	"context"
	"time"

	"go.uber.org/zap"
)

// PurgeExpiredTokens removes verification and password reset tokens that
// can no longer be used. Expired tokens are also rejected and deleted when
// someone tries to use them, this only reclaims the rows nobody came back for.
func PurgeExpiredTokens(ctx context.Context, store *repository.Store) {
	n, err := store.Tokens().DeleteExpired(ctx, time.Now())
	if err != nil {
		zap.L().Error("Failed to clean up expired tokens", zap.Error(err))
		return
	}

	if n > 0 {
		zap.L().Debug("Cleaned up expired tokens", zap.Int64("count", n))
	}
}
