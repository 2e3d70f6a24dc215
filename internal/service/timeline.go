package service

import (
	"time"

	"shareit/internal/models"
)

// lastAndNext picks the booking pointers shown to an item owner.
// last is the started booking with the greatest end, next the upcoming one with the
// smallest start. Rejected bookings never qualify.
func lastAndNext(bookings []*models.Booking, now time.Time) (last, next *models.Booking) {
	for _, b := range bookings {
		if b.Status == models.StatusRejected {
			continue
		}

		if b.Start.After(now) {
			if next == nil || b.Start.Before(next.Start) ||
				(b.Start.Equal(next.Start) && (b.End.Before(next.End) || (b.End.Equal(next.End) && b.ID < next.ID))) {
				next = b
			}
			continue
		}

		if last == nil || b.End.After(last.End) || (b.End.Equal(last.End) && b.ID > last.ID) {
			last = b
		}
	}
	return last, next
}

func groupBookingsByItem(bookings []*models.Booking) map[int64][]*models.Booking {
	out := make(map[int64][]*models.Booking)
	for _, b := range bookings {
		out[b.Item.ID] = append(out[b.Item.ID], b)
	}
	return out
}

func groupCommentsByItem(comments []*models.Comment) map[int64][]*models.Comment {
	out := make(map[int64][]*models.Comment)
	for _, c := range comments {
		out[c.ItemID] = append(out[c.ItemID], c)
	}
	return out
}

// decorate builds the viewer's detail of an item. Only the owner sees booking pointers.
func decorate(item *models.Item, bookings []*models.Booking, comments []*models.Comment, viewerID int64, now time.Time) *models.ItemDetail {
	detail := &models.ItemDetail{Item: *item, Comments: comments}
	if detail.Comments == nil {
		detail.Comments = []*models.Comment{}
	}

	if item.OwnerID != viewerID {
		return detail
	}

	last, next := lastAndNext(bookings, now)
	if last != nil {
		detail.LastBooking = last.Short()
	}
	if next != nil {
		detail.NextBooking = next.Short()
	}
	return detail
}
