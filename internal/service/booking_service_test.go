package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

const (
	ownerID  int64 = 1
	bookerID int64 = 2
	otherID  int64 = 3
	itemID   int64 = 10
)

func newTestBookingService(repo *MockRepository, bus *mockEventBus) *BookingService {
	logger := zerolog.Nop()
	var pub domain.EventPublisher
	if bus != nil {
		pub = bus
	}
	s := NewBookingService(repo, pub, &logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func waitingBooking() *models.Booking {
	return &models.Booking{
		ID:      100,
		Start:   fixedNow.Add(time.Hour),
		End:     fixedNow.Add(2 * time.Hour),
		Status:  models.StatusWaiting,
		Booker:  models.UserShort{ID: bookerID, Name: "Booker"},
		Item:    models.ItemShort{ID: itemID, Name: "Drill"},
		OwnerID: ownerID,
		Version: 1,
	}
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()
	req := models.BookingRequest{ItemID: itemID, Start: fixedNow.Add(time.Hour), End: fixedNow.Add(2 * time.Hour)}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		bus := new(mockEventBus)
		s := newTestBookingService(repo, bus)

		repo.On("GetUserByID", ctx, bookerID).Return(&models.User{ID: bookerID, Name: "Booker"}, nil)
		repo.On("GetItemByID", ctx, itemID).Return(&models.Item{ID: itemID, Name: "Drill", Available: true, OwnerID: ownerID}, nil)
		repo.On("CreateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Status == models.StatusWaiting && b.Item.ID == itemID && b.Booker.ID == bookerID
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 100
		}).Return(nil)
		bus.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(nil).Once()

		b, err := s.CreateBooking(ctx, req, bookerID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), b.ID)
		assert.Equal(t, models.StatusWaiting, b.Status)
		assert.Equal(t, "Drill", b.Item.Name)
		assert.Equal(t, "Booker", b.Booker.Name)
		assert.Equal(t, ownerID, b.OwnerID)

		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("OwnerCannotBookOwnItem", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, ownerID).Return(&models.User{ID: ownerID}, nil)
		repo.On("GetItemByID", ctx, itemID).Return(&models.Item{ID: itemID, Available: true, OwnerID: ownerID}, nil)

		_, err := s.CreateBooking(ctx, req, ownerID)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("ItemUnavailable", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, bookerID).Return(&models.User{ID: bookerID}, nil)
		repo.On("GetItemByID", ctx, itemID).Return(&models.Item{ID: itemID, Available: false, OwnerID: ownerID}, nil)

		_, err := s.CreateBooking(ctx, req, bookerID)
		assert.ErrorIs(t, err, domain.ErrNotAvailable)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("MissingBooker", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, bookerID).Return(nil, database.ErrNotFound)

		_, err := s.CreateBooking(ctx, req, bookerID)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	})

	t.Run("MissingItem", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, bookerID).Return(&models.User{ID: bookerID}, nil)
		repo.On("GetItemByID", ctx, itemID).Return(nil, database.ErrNotFound)

		_, err := s.CreateBooking(ctx, req, bookerID)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	})

	t.Run("InvertedWindow", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		bad := models.BookingRequest{ItemID: itemID, Start: req.End, End: req.Start}
		_, err := s.CreateBooking(ctx, bad, bookerID)
		assert.ErrorIs(t, err, domain.ErrValidation)

		same := models.BookingRequest{ItemID: itemID, Start: req.Start, End: req.Start}
		_, err = s.CreateBooking(ctx, same, bookerID)
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertExpectations(t)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, bookerID).Return(nil, assert.AnError)

		_, err := s.CreateBooking(ctx, req, bookerID)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, domain.ErrEntityNotFound)
	})
}

func TestBookingService_ConfirmBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve", func(t *testing.T) {
		repo := new(MockRepository)
		bus := new(mockEventBus)
		s := newTestBookingService(repo, bus)

		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(), nil)
		repo.On("UpdateBookingStatusWithVersion", ctx, int64(100), int64(1), models.StatusApproved).Return(nil)
		bus.On("PublishJSON", events.EventBookingApproved, mock.Anything).Return(nil).Once()

		b, err := s.ConfirmBooking(ctx, ownerID, 100, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, b.Status)
		assert.Equal(t, int64(2), b.Version)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("Reject", func(t *testing.T) {
		repo := new(MockRepository)
		bus := new(mockEventBus)
		s := newTestBookingService(repo, bus)

		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(), nil)
		repo.On("UpdateBookingStatusWithVersion", ctx, int64(100), int64(1), models.StatusRejected).Return(nil)
		bus.On("PublishJSON", events.EventBookingRejected, mock.Anything).Return(nil).Once()

		b, err := s.ConfirmBooking(ctx, ownerID, 100, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, b.Status)
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		decided := waitingBooking()
		decided.Status = models.StatusApproved
		repo.On("GetBooking", ctx, int64(100)).Return(decided, nil)

		_, err := s.ConfirmBooking(ctx, ownerID, 100, false)
		assert.ErrorIs(t, err, domain.ErrNotAvailable)
		repo.AssertNotCalled(t, "UpdateBookingStatusWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(), nil)

		_, err := s.ConfirmBooking(ctx, bookerID, 100, true)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)
		repo.AssertNotCalled(t, "UpdateBookingStatusWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostRace", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(), nil)
		repo.On("UpdateBookingStatusWithVersion", ctx, int64(100), int64(1), models.StatusApproved).
			Return(database.ErrConcurrentModification)

		_, err := s.ConfirmBooking(ctx, ownerID, 100, true)
		assert.ErrorIs(t, err, domain.ErrNotAvailable)
	})

	t.Run("Missing", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetBooking", ctx, int64(100)).Return(nil, database.ErrNotFound)

		_, err := s.ConfirmBooking(ctx, ownerID, 100, true)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	})

	t.Run("PublishFailureDoesNotFail", func(t *testing.T) {
		repo := new(MockRepository)
		bus := new(mockEventBus)
		s := newTestBookingService(repo, bus)

		repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(), nil)
		repo.On("UpdateBookingStatusWithVersion", ctx, int64(100), int64(1), models.StatusApproved).Return(nil)
		bus.On("PublishJSON", events.EventBookingApproved, mock.Anything).Return(assert.AnError)

		_, err := s.ConfirmBooking(ctx, ownerID, 100, true)
		assert.NoError(t, err)
	})
}

func TestBookingService_GetBooking(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := newTestBookingService(repo, nil)

	repo.On("GetBooking", ctx, int64(100)).Return(waitingBooking(), nil)

	for _, viewer := range []int64{bookerID, ownerID} {
		b, err := s.GetBooking(ctx, viewer, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(100), b.ID)
	}

	_, err := s.GetBooking(ctx, otherID, 100)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestBookingService_ListBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("UserBookingsPushFilterDown", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		list := []*models.Booking{waitingBooking()}
		repo.On("GetUserByID", ctx, bookerID).Return(&models.User{ID: bookerID}, nil)
		repo.On("ListBookings", ctx, models.BookingFilter{
			BookerID: bookerID, State: models.StateCurrent, Now: fixedNow, Offset: 5, Limit: 10,
		}).Return(list, nil)

		got, err := s.GetUserBookings(ctx, bookerID, "CURRENT", 5, 10)
		require.NoError(t, err)
		assert.Equal(t, list, got)
		repo.AssertExpectations(t)
	})

	t.Run("OwnerBookings", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, ownerID).Return(&models.User{ID: ownerID}, nil)
		repo.On("ListBookings", ctx, models.BookingFilter{
			OwnerID: ownerID, State: models.StateAll, Now: fixedNow, Offset: 0, Limit: 20,
		}).Return([]*models.Booking{}, nil)

		got, err := s.GetOwnerBookings(ctx, ownerID, "ALL", 0, 20)
		require.NoError(t, err)
		assert.Empty(t, got)
		repo.AssertExpectations(t)
	})

	t.Run("UnknownState", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, bookerID).Return(&models.User{ID: bookerID}, nil)

		_, err := s.GetUserBookings(ctx, bookerID, "UNSUPPORTED_STATUS", 0, 20)
		assert.ErrorIs(t, err, domain.ErrUnsupportedState)
		assert.Contains(t, err.Error(), models.UnsupportedStateMessage)
		repo.AssertNotCalled(t, "ListBookings", mock.Anything, mock.Anything)
	})

	t.Run("MissingActor", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, otherID).Return(nil, database.ErrNotFound)

		_, err := s.GetOwnerBookings(ctx, otherID, "ALL", 0, 20)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	})

	t.Run("BadPage", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestBookingService(repo, nil)

		repo.On("GetUserByID", ctx, bookerID).Return(&models.User{ID: bookerID}, nil)

		_, err := s.GetUserBookings(ctx, bookerID, "ALL", -1, 20)
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = s.GetUserBookings(ctx, bookerID, "ALL", 0, 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
