package service

import (
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// Access rules. A caller who may not act on an entity is told it does not exist.

func ensureCanViewBooking(b *models.Booking, userID int64) error {
	if b.Booker.ID != userID && b.OwnerID != userID {
		return fmt.Errorf("booking %d not visible to user %d: %w", b.ID, userID, domain.ErrEntityNotFound)
	}
	return nil
}

func ensureBookingOwner(b *models.Booking, userID int64) error {
	if b.OwnerID != userID {
		return fmt.Errorf("user %d does not own the item of booking %d: %w", userID, b.ID, domain.ErrEntityNotFound)
	}
	return nil
}

func ensureNotOwnItem(item *models.Item, bookerID int64) error {
	if item.OwnerID == bookerID {
		return fmt.Errorf("owner %d cannot book own item %d: %w", bookerID, item.ID, domain.ErrEntityNotFound)
	}
	return nil
}

func ensureItemOwner(item *models.Item, userID int64) error {
	if item.OwnerID != userID {
		return fmt.Errorf("user %d does not own item %d: %w", userID, item.ID, domain.ErrEntityNotFound)
	}
	return nil
}

func ensureCompletedBooking(completed bool, userID, itemID int64) error {
	if !completed {
		return fmt.Errorf("user %d has no completed booking of item %d: %w", userID, itemID, domain.ErrNotAvailable)
	}
	return nil
}
