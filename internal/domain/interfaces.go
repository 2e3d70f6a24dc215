package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Repository is the storage contract the services depend on.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*models.Item, error)
	GetItemsByRequests(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, offset, limit int) ([]*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, status models.BookingStatus) error
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	GetBookingsForItems(ctx context.Context, itemIDs []int64) ([]*models.Booking, error)
	ExistsCompletedBooking(ctx context.Context, itemID, bookerID int64, before time.Time) (bool, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsForItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)

	CreateRequest(ctx context.Context, request *models.Request) error
	GetRequest(ctx context.Context, id int64) (*models.Request, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.Request, error)
	GetRequestsExcept(ctx context.Context, requestorID int64, offset, limit int) ([]*models.Request, error)
}

// LimitRepository counts actions per user inside a fixed window.
// ReleaseRateLimit gives back one unit taken by CheckRateLimit and never goes below zero.
type LimitRepository interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
	ReleaseRateLimit(ctx context.Context, userID int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest, bookerID int64) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, userID, bookingID int64, approve bool) (*models.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	GetUserBookings(ctx context.Context, bookerID int64, state string, from, size int) ([]*models.Booking, error)
	GetOwnerBookings(ctx context.Context, ownerID int64, state string, from, size int) ([]*models.Booking, error)
}

type ItemService interface {
	AddItem(ctx context.Context, ownerID int64, in models.ItemInput) (*models.Item, error)
	UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	GetItemDetail(ctx context.Context, userID, itemID int64) (*models.ItemDetail, error)
	ListOwnerItems(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDetail, error)
	SearchItems(ctx context.Context, text string, from, size int) ([]*models.Item, error)
	DeleteItem(ctx context.Context, ownerID, itemID int64) error
	AddComment(ctx context.Context, in models.CommentInput, userID, itemID int64) (*models.Comment, error)
}

type UserService interface {
	AddUser(ctx context.Context, in models.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type RequestService interface {
	AddRequest(ctx context.Context, userID int64, in models.RequestInput) (*models.Request, error)
	GetOwnRequests(ctx context.Context, userID int64) ([]*models.Request, error)
	GetOtherRequests(ctx context.Context, userID int64, from, size int) ([]*models.Request, error)
	GetRequest(ctx context.Context, userID, requestID int64) (*models.Request, error)
}
