package models

import "time"

type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	OwnerID     int64     `json:"-"`
	RequestID   *int64    `json:"requestId,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type ItemShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemDetail is an item as rendered for a viewer. Booking pointers are only
// filled in for the owner.
type ItemDetail struct {
	Item
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
	Comments    []*Comment    `json:"comments"`
}

type ItemInput struct {
	Name        string
	Description string
	Available   bool
	RequestID   *int64
}

type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}
