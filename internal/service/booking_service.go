package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

var _ domain.BookingService = (*BookingService)(nil)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	l := logger.With().Str("component", "booking_service").Logger()
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   &l,
		now:      time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, req models.BookingRequest, bookerID int64) (*models.Booking, error) {
	if !req.Start.Before(req.End) {
		return nil, fmt.Errorf("booking start must be before end: %w", domain.ErrValidation)
	}

	booker, err := getUser(ctx, s.repo, bookerID)
	if err != nil {
		return nil, err
	}

	item, err := getItem(ctx, s.repo, req.ItemID)
	if err != nil {
		return nil, err
	}

	if err := ensureNotOwnItem(item, bookerID); err != nil {
		return nil, err
	}

	if !item.Available {
		return nil, fmt.Errorf("item %d is not available: %w", item.ID, domain.ErrNotAvailable)
	}

	booking := &models.Booking{
		Start:   req.Start,
		End:     req.End,
		Status:  models.StatusWaiting,
		Booker:  models.UserShort{ID: booker.ID, Name: booker.Name},
		Item:    models.ItemShort{ID: item.ID, Name: item.Name},
		OwnerID: item.OwnerID,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("booker_id", booker.ID).
		Msg("Booking created")

	s.publishEvent(events.EventBookingCreated, booking, bookerID)
	return booking, nil
}

// ConfirmBooking approves or rejects a WAITING booking on behalf of the item owner.
func (s *BookingService) ConfirmBooking(ctx context.Context, userID, bookingID int64, approve bool) (*models.Booking, error) {
	booking, err := getBooking(ctx, s.repo, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.StatusWaiting {
		return nil, fmt.Errorf("booking %d is already %s: %w", booking.ID, booking.Status, domain.ErrNotAvailable)
	}

	if err := ensureBookingOwner(booking, userID); err != nil {
		return nil, err
	}

	status, eventType := models.StatusRejected, events.EventBookingRejected
	if approve {
		status, eventType = models.StatusApproved, events.EventBookingApproved
	}

	err = s.repo.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, status)
	if errors.Is(err, database.ErrConcurrentModification) {
		return nil, fmt.Errorf("booking %d was decided concurrently: %w", booking.ID, domain.ErrNotAvailable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	booking.Status = status
	booking.Version++

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("status", string(status)).
		Int64("owner_id", userID).
		Msg("Booking decided")

	s.publishEvent(eventType, booking, userID)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	booking, err := getBooking(ctx, s.repo, bookingID)
	if err != nil {
		return nil, err
	}

	if err := ensureCanViewBooking(booking, userID); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.Item.ID,
		ItemName:  booking.Item.Name,
		BookerID:  booking.Booker.ID,
		OwnerID:   booking.OwnerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
