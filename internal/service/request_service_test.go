package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRequestService(repo *MockRepository) *RequestService {
	logger := zerolog.Nop()
	s := NewRequestService(repo, &logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestRequestService_AddRequest(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := newTestRequestService(repo)

	repo.On("GetUserByID", ctx, bookerID).Return(&models.User{ID: bookerID}, nil)
	repo.On("CreateRequest", ctx, mock.AnythingOfType("*models.Request")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Request).ID = 7
	}).Return(nil)

	r, err := s.AddRequest(ctx, bookerID, models.RequestInput{Description: "need a tent"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.ID)
	assert.Equal(t, fixedNow, r.Created)
	assert.NotNil(t, r.Items)

	_, err = s.AddRequest(ctx, bookerID, models.RequestInput{Description: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRequestService_AttachesItems(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := newTestRequestService(repo)

	r1 := &models.Request{ID: 1, RequestorID: bookerID}
	r2 := &models.Request{ID: 2, RequestorID: bookerID}
	reqID := int64(1)

	repo.On("GetUserByID", ctx, bookerID).Return(&models.User{ID: bookerID}, nil)
	repo.On("GetRequestsByRequestor", ctx, bookerID).Return([]*models.Request{r2, r1}, nil)
	repo.On("GetItemsByRequests", ctx, []int64{2, 1}).Return([]*models.Item{{ID: 10, RequestID: &reqID}}, nil)

	list, err := s.GetOwnRequests(ctx, bookerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Empty(t, list[0].Items)
	require.Len(t, list[1].Items, 1)
	assert.Equal(t, int64(10), list[1].Items[0].ID)
}

func TestRequestService_GetOtherRequests(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := newTestRequestService(repo)

	repo.On("GetUserByID", ctx, ownerID).Return(&models.User{ID: ownerID}, nil)
	repo.On("GetRequestsExcept", ctx, ownerID, 0, 10).Return([]*models.Request{}, nil)

	list, err := s.GetOtherRequests(ctx, ownerID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
	repo.AssertNotCalled(t, "GetItemsByRequests", mock.Anything, mock.Anything)
}

func TestRequestService_GetRequest(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := newTestRequestService(repo)

	repo.On("GetUserByID", ctx, ownerID).Return(&models.User{ID: ownerID}, nil)
	repo.On("GetRequest", ctx, int64(1)).Return(&models.Request{ID: 1}, nil)
	repo.On("GetRequest", ctx, int64(2)).Return(nil, database.ErrNotFound)
	repo.On("GetItemsByRequests", ctx, []int64{1}).Return([]*models.Item{}, nil)

	r, err := s.GetRequest(ctx, ownerID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.ID)

	_, err = s.GetRequest(ctx, ownerID, 2)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}
