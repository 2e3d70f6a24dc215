package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockLimits struct {
	mock.Mock
}

func (m *mockLimits) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *mockLimits) ReleaseRateLimit(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestFailoverLimitRepository_Release(t *testing.T) {
	primary := new(mockLimits)
	fallback := new(mockLimits)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverLimitRepository(primary, fallback, &logger)
	ctx := context.Background()

	primary.On("ReleaseRateLimit", ctx, int64(1)).Return(nil).Once()
	assert.NoError(t, repo.ReleaseRateLimit(ctx, 1))
	assert.False(t, repo.Degraded())

	primary.On("ReleaseRateLimit", ctx, int64(2)).Return(errors.New("fail")).Once()
	fallback.On("ReleaseRateLimit", ctx, int64(2)).Return(nil).Once()
	assert.NoError(t, repo.ReleaseRateLimit(ctx, 2))
	assert.True(t, repo.Degraded())

	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}

func TestFailoverLimitRepository(t *testing.T) {
	primary := new(mockLimits)
	fallback := new(mockLimits)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverLimitRepository(primary, fallback, &logger)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("CheckRateLimit", ctx, int64(1), 10, time.Minute).Return(false, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, 1, 10, time.Minute)
		assert.NoError(t, err)
		assert.False(t, allowed)
		assert.False(t, repo.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("CheckRateLimit", ctx, int64(2), 10, time.Minute).Return(false, errors.New("fail")).Once()
		fallback.On("CheckRateLimit", ctx, int64(2), 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, 2, 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		now = now.Add(30 * time.Second)
		fallback.On("CheckRateLimit", ctx, int64(3), 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, 3, 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		primary.AssertNotCalled(t, "CheckRateLimit", ctx, int64(3), 10, time.Minute)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		now = now.Add(time.Minute)
		primary.On("CheckRateLimit", ctx, int64(4), 10, time.Minute).Return(false, errors.New("still fail")).Once()
		fallback.On("CheckRateLimit", ctx, int64(4), 10, time.Minute).Return(true, nil).Once()

		_, err := repo.CheckRateLimit(ctx, 4, 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, repo.Degraded())
	})

	t.Run("Recovery", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("CheckRateLimit", ctx, int64(5), 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, 5, 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.False(t, repo.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("FallbackError", func(t *testing.T) {
		primary.On("CheckRateLimit", ctx, int64(6), 1, time.Second).Return(false, errors.New("fail")).Once()
		fallback.On("CheckRateLimit", ctx, int64(6), 1, time.Second).Return(false, errors.New("boom")).Once()

		_, err := repo.CheckRateLimit(ctx, 6, 1, time.Second)
		assert.EqualError(t, err, "boom")
	})
}
