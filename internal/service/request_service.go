package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

var _ domain.RequestService = (*RequestService)(nil)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	l := logger.With().Str("component", "request_service").Logger()
	return &RequestService{repo: repo, logger: &l, now: time.Now}
}

func (s *RequestService) AddRequest(ctx context.Context, userID int64, in models.RequestInput) (*models.Request, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("request description is required: %w", domain.ErrValidation)
	}

	if _, err := getUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	req := &models.Request{
		Description: in.Description,
		RequestorID: userID,
		Created:     s.now(),
		Items:       []*models.Item{},
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}

	s.logger.Info().Int64("request_id", req.ID).Int64("requestor_id", userID).Msg("Request added")
	return req, nil
}

// GetOwnRequests lists the user's requests, newest first.
func (s *RequestService) GetOwnRequests(ctx context.Context, userID int64) ([]*models.Request, error) {
	if _, err := getUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.GetRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}
	if err := s.attachItems(ctx, requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// GetOtherRequests pages through requests posted by everybody else, newest first.
func (s *RequestService) GetOtherRequests(ctx context.Context, userID int64, from, size int) ([]*models.Request, error) {
	if err := validatePage(from, size); err != nil {
		return nil, err
	}

	if _, err := getUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.GetRequestsExcept(ctx, userID, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}
	if err := s.attachItems(ctx, requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *RequestService) GetRequest(ctx context.Context, userID, requestID int64) (*models.Request, error) {
	if _, err := getUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	req, err := getRequest(ctx, s.repo, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, []*models.Request{req}); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *RequestService) attachItems(ctx context.Context, requests []*models.Request) error {
	if len(requests) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(requests))
	byID := make(map[int64]*models.Request, len(requests))
	for _, r := range requests {
		r.Items = []*models.Item{}
		ids = append(ids, r.ID)
		byID[r.ID] = r
	}

	items, err := s.repo.GetItemsByRequests(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to get request items: %w", err)
	}
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		if r, ok := byID[*item.RequestID]; ok {
			r.Items = append(r.Items, item)
		}
	}
	return nil
}
