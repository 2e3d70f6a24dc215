package models

import "time"

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// BookingState is the query filter vocabulary for booking lists.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState maps a raw filter value onto the closed state set.
func ParseBookingState(raw string) (BookingState, bool) {
	switch s := BookingState(raw); s {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return s, true
	default:
		return "", false
	}
}

type Booking struct {
	ID        int64         `json:"id"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Status    BookingStatus `json:"status"`
	Booker    UserShort     `json:"booker"`
	Item      ItemShort     `json:"item"`
	OwnerID   int64         `json:"-"`
	CreatedAt time.Time     `json:"-"`
	UpdatedAt time.Time     `json:"-"`
	Version   int64         `json:"-"`
}

// BookingShort is the pointer form used to annotate item details.
type BookingShort struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

func (b *Booking) Short() *BookingShort {
	return &BookingShort{ID: b.ID, BookerID: b.Booker.ID, Start: b.Start, End: b.End}
}

// BookingRequest is what a booker submits.
type BookingRequest struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

// BookingFilter selects bookings for exactly one actor. Either BookerID or OwnerID is set.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    BookingState
	Now      time.Time
	Offset   int
	Limit    int
}
