package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/domain"
)

var _ domain.LimitRepository = (*MemoryLimitRepository)(nil)

// MemoryLimitRepository keeps fixed-window counters in process memory.
type MemoryLimitRepository struct {
	mu      sync.Mutex
	windows map[int64]*limitWindow
	now     func() time.Time
}

type limitWindow struct {
	count     int
	expiresAt time.Time
}

func NewMemoryLimitRepository() *MemoryLimitRepository {
	return &MemoryLimitRepository{
		windows: make(map[int64]*limitWindow),
		now:     time.Now,
	}
}

func (r *MemoryLimitRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.windows[userID]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &limitWindow{expiresAt: now.Add(window)}
		r.windows[userID] = entry
	}
	entry.count++

	r.evictExpired(now)
	return entry.count <= limit, nil
}

func (r *MemoryLimitRepository) ReleaseRateLimit(ctx context.Context, userID int64) error {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.windows[userID]; ok && now.Before(entry.expiresAt) && entry.count > 0 {
		entry.count--
	}
	return nil
}

// evictExpired drops finished windows once the map grows.
func (r *MemoryLimitRepository) evictExpired(now time.Time) {
	if len(r.windows) < 1024 {
		return
	}
	for id, w := range r.windows {
		if !now.Before(w.expiresAt) {
			delete(r.windows, id)
		}
	}
}
