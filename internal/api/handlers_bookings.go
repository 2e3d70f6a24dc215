package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	booker, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body createBookingRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := body.toModel(s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.limiter.check(r.Context(), booker); err != nil {
		s.fail(w, r, err)
		return
	}
	booking, err := s.deps.Bookings.CreateBooking(r.Context(), req, booker)
	if err != nil {
		s.limiter.release(r.Context(), booker)
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	owner, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	approved, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("approved")))
	if err != nil {
		s.fail(w, r, fmt.Errorf("approved must be true or false: %w", errInvalidQueryParam))
		return
	}
	booking, err := s.deps.Bookings.ConfirmBooking(r.Context(), owner, id, approved)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	viewer, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	booking, err := s.deps.Bookings.GetBooking(r.Context(), viewer, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleUserBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.deps.Bookings.GetUserBookings)
}

func (s *HTTPServer) handleOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.deps.Bookings.GetOwnerBookings)
}

type bookingLister func(ctx context.Context, actorID int64, state string, from, size int) ([]*models.Booking, error)

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	actor, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	from, size, err := s.page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookings, err := list(r.Context(), actor, stateParam(r), from, size)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}
