package service

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"
)

// notFound translates a storage miss into the domain error kind.
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%s %d not found: %w", entity, id, domain.ErrEntityNotFound)
	}
	return fmt.Errorf("failed to get %s %d: %w", entity, id, err)
}

func getUser(ctx context.Context, repo domain.Repository, id int64) (*models.User, error) {
	u, err := repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

func getItem(ctx context.Context, repo domain.Repository, id int64) (*models.Item, error) {
	item, err := repo.GetItemByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "item", id)
	}
	return item, nil
}

func getBooking(ctx context.Context, repo domain.Repository, id int64) (*models.Booking, error) {
	b, err := repo.GetBooking(ctx, id)
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

func getRequest(ctx context.Context, repo domain.Repository, id int64) (*models.Request, error) {
	r, err := repo.GetRequest(ctx, id)
	if err != nil {
		return nil, notFound(err, "request", id)
	}
	return r, nil
}

func validatePage(from, size int) error {
	if from < 0 {
		return fmt.Errorf("from must not be negative: %w", domain.ErrValidation)
	}
	if size <= 0 {
		return fmt.Errorf("size must be positive: %w", domain.ErrValidation)
	}
	return nil
}
