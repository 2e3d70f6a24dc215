package api

import (
	"context"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

// bookingLimiter caps successful booking creations per user. check reserves a slot and
// release returns it when the creation fails. Store failures let the request through.
type bookingLimiter struct {
	repo   domain.LimitRepository
	limit  int
	window time.Duration
	logger *zerolog.Logger
}

func newBookingLimiter(cfg config.LimitsConfig, repo domain.LimitRepository, logger *zerolog.Logger) *bookingLimiter {
	if !cfg.Enabled || repo == nil {
		return nil
	}
	return &bookingLimiter{
		repo:   repo,
		limit:  cfg.BookingsPerWindow,
		window: time.Duration(cfg.WindowSeconds) * time.Second,
		logger: logger,
	}
}

func (l *bookingLimiter) check(ctx context.Context, userID int64) error {
	if l == nil {
		return nil
	}
	allowed, err := l.repo.CheckRateLimit(ctx, userID, l.limit, l.window)
	if err != nil {
		l.logger.Warn().Err(err).Int64("user_id", userID).Msg("Booking limit check failed")
		return nil
	}
	if !allowed {
		l.release(ctx, userID)
		metrics.IncRateLimited("booking_create")
		return errBookingLimit
	}
	return nil
}

func (l *bookingLimiter) release(ctx context.Context, userID int64) {
	if l == nil {
		return
	}
	if err := l.repo.ReleaseRateLimit(ctx, userID); err != nil {
		l.logger.Warn().Err(err).Int64("user_id", userID).Msg("Booking limit release failed")
	}
}
