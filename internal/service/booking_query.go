package service

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// GetUserBookings lists bookings made by bookerID in the requested state.
func (s *BookingService) GetUserBookings(ctx context.Context, bookerID int64, state string, from, size int) ([]*models.Booking, error) {
	return s.listBookings(ctx, bookerID, state, from, size, func(f *models.BookingFilter) {
		f.BookerID = bookerID
	})
}

// GetOwnerBookings lists bookings of every item owned by ownerID in the requested state.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID int64, state string, from, size int) ([]*models.Booking, error) {
	return s.listBookings(ctx, ownerID, state, from, size, func(f *models.BookingFilter) {
		f.OwnerID = ownerID
	})
}

func (s *BookingService) listBookings(
	ctx context.Context,
	actorID int64,
	rawState string,
	from, size int,
	scope func(*models.BookingFilter),
) ([]*models.Booking, error) {
	if _, err := getUser(ctx, s.repo, actorID); err != nil {
		return nil, err
	}

	state, ok := models.ParseBookingState(rawState)
	if !ok {
		return nil, fmt.Errorf("%s: %w", models.UnsupportedStateMessage, domain.ErrUnsupportedState)
	}

	if err := validatePage(from, size); err != nil {
		return nil, err
	}

	filter := models.BookingFilter{
		State:  state,
		Now:    s.now(),
		Offset: from,
		Limit:  size,
	}
	scope(&filter)

	bookings, err := s.repo.ListBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
