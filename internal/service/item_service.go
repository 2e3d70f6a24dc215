package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

var _ domain.ItemService = (*ItemService)(nil)

type ItemService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	l := logger.With().Str("component", "item_service").Logger()
	return &ItemService{
		repo:     repo,
		eventBus: eventBus,
		logger:   &l,
		now:      time.Now,
	}
}

func (s *ItemService) AddItem(ctx context.Context, ownerID int64, in models.ItemInput) (*models.Item, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("item name and description are required: %w", domain.ErrValidation)
	}

	if _, err := getUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}

	if in.RequestID != nil {
		if _, err := getRequest(ctx, s.repo, *in.RequestID); err != nil {
			return nil, err
		}
	}

	item := &models.Item{
		Name:        in.Name,
		Description: in.Description,
		Available:   in.Available,
		OwnerID:     ownerID,
		RequestID:   in.RequestID,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("Item added")
	return item, nil
}

// UpdateItem applies a partial update. Blank strings and absent fields keep stored values.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := getItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}

	if err := ensureItemOwner(item, ownerID); err != nil {
		return nil, err
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		item.Name = *patch.Name
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, notFound(err, "item", itemID)
	}
	return item, nil
}

func (s *ItemService) GetItemDetail(ctx context.Context, userID, itemID int64) (*models.ItemDetail, error) {
	if _, err := getUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	item, err := getItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.GetCommentsForItems(ctx, []int64{item.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	var bookings []*models.Booking
	if item.OwnerID == userID {
		bookings, err = s.repo.GetBookingsForItems(ctx, []int64{item.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to get item bookings: %w", err)
		}
	}

	return decorate(item, bookings, comments, userID, s.now()), nil
}

// ListOwnerItems returns a page of the owner's items, each with its timeline and comments.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDetail, error) {
	if err := validatePage(from, size); err != nil {
		return nil, err
	}

	if _, err := getUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner items: %w", err)
	}
	if len(items) == 0 {
		return []*models.ItemDetail{}, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	bookings, err := s.repo.GetBookingsForItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get item bookings: %w", err)
	}
	comments, err := s.repo.GetCommentsForItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	byItem := groupBookingsByItem(bookings)
	commentsByItem := groupCommentsByItem(comments)
	now := s.now()

	details := make([]*models.ItemDetail, 0, len(items))
	for _, item := range items {
		details = append(details, decorate(item, byItem[item.ID], commentsByItem[item.ID], ownerID, now))
	}
	return details, nil
}

func (s *ItemService) SearchItems(ctx context.Context, text string, from, size int) ([]*models.Item, error) {
	if err := validatePage(from, size); err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}

	items, err := s.repo.SearchItems(ctx, text, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, ownerID, itemID int64) error {
	item, err := getItem(ctx, s.repo, itemID)
	if err != nil {
		return err
	}

	if err := ensureItemOwner(item, ownerID); err != nil {
		return err
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return notFound(err, "item", itemID)
	}

	s.logger.Info().Int64("item_id", itemID).Int64("owner_id", ownerID).Msg("Item deleted")
	return nil
}

// AddComment stores a review from a user who finished a booking of the item.
func (s *ItemService) AddComment(ctx context.Context, in models.CommentInput, userID, itemID int64) (*models.Comment, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("comment text is required: %w", domain.ErrValidation)
	}

	author, err := getUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	item, err := getItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	completed, err := s.repo.ExistsCompletedBooking(ctx, item.ID, author.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check bookings: %w", err)
	}
	if err := ensureCompletedBooking(completed, author.ID, item.ID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:       in.Text,
		ItemID:     item.ID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	if s.eventBus != nil {
		payload := events.CommentEventPayload{CommentID: comment.ID, ItemID: item.ID, AuthorID: author.ID}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}
