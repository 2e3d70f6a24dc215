package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

var _ domain.LimitRepository = (*FailoverLimitRepository)(nil)

const retryPrimaryAfter = time.Minute

// FailoverLimitRepository uses the primary store and switches to the fallback
// while the primary is failing. The primary is retried once a minute.
type FailoverLimitRepository struct {
	primary  domain.LimitRepository
	fallback domain.LimitRepository
	logger   *zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	isDown   bool
	downedAt time.Time
}

func NewFailoverLimitRepository(primary, fallback domain.LimitRepository, logger *zerolog.Logger) *FailoverLimitRepository {
	return &FailoverLimitRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverLimitRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}

// ReleaseRateLimit goes to whichever store is currently serving checks.
func (r *FailoverLimitRepository) ReleaseRateLimit(ctx context.Context, userID int64) error {
	if r.usePrimary() {
		err := r.primary.ReleaseRateLimit(ctx, userID)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.ReleaseRateLimit(ctx, userID)
}

func (r *FailoverLimitRepository) usePrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.isDown || r.now().Sub(r.downedAt) >= retryPrimaryAfter
}

func (r *FailoverLimitRepository) markUp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isDown {
		r.logger.Info().Msg("Primary limit store recovered")
	}
	r.isDown = false
}

func (r *FailoverLimitRepository) markDown(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isDown {
		r.logger.Error().Err(err).Msg("Primary limit store failed, falling back to memory")
	}
	r.isDown = true
	r.downedAt = r.now()
}

// Degraded reports whether calls currently go to the fallback.
func (r *FailoverLimitRepository) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isDown
}
