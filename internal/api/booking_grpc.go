package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	bookingServiceName = "shareit.booking.v1.BookingService"

	// userIDMetadataKey is the gRPC form of the X-Sharer-User-Id header.
	userIDMetadataKey = "x-sharer-user-id"
)

type CreateBookingRequest struct {
	ItemID int64     `json:"itemId"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type ConfirmBookingRequest struct {
	BookingID int64 `json:"bookingId"`
	Approved  bool  `json:"approved"`
}

type GetBookingRequest struct {
	BookingID int64 `json:"bookingId"`
}

// ListBookingsRequest uses the HTTP defaults for zero values except From.
type ListBookingsRequest struct {
	State string `json:"state"`
	From  int    `json:"from"`
	Size  int    `json:"size"`
}

type BookingResponse struct {
	Booking *models.Booking `json:"booking"`
}

type ListBookingsResponse struct {
	Bookings []*models.Booking `json:"bookings"`
}

// BookingServiceServer is implemented by BookingGRPCService.
type BookingServiceServer interface {
	CreateBooking(context.Context, *CreateBookingRequest) (*BookingResponse, error)
	ConfirmBooking(context.Context, *ConfirmBookingRequest) (*BookingResponse, error)
	GetBooking(context.Context, *GetBookingRequest) (*BookingResponse, error)
	ListUserBookings(context.Context, *ListBookingsRequest) (*ListBookingsResponse, error)
	ListOwnerBookings(context.Context, *ListBookingsRequest) (*ListBookingsResponse, error)
}

// BookingGRPCService adapts the booking engine to gRPC.
type BookingGRPCService struct {
	bookings domain.BookingService
	limiter  *bookingLimiter
	paging   config.BookingConfig
	now      func() time.Time
}

func NewBookingGRPCService(cfg *config.Config, deps Dependencies, logger *zerolog.Logger) *BookingGRPCService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BookingGRPCService{
		bookings: deps.Bookings,
		limiter:  newBookingLimiter(cfg.Limits, deps.Limits, logger),
		paging:   cfg.Booking,
		now:      time.Now,
	}
}

func (s *BookingGRPCService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error) {
	booker, err := metadataUserID(ctx)
	if err != nil {
		return nil, grpcStatus(err)
	}
	start, end := req.Start.UTC(), req.End.UTC()
	body := createBookingRequest{ItemID: req.ItemID, Start: (*Timestamp)(&start), End: (*Timestamp)(&end)}
	in, err := body.toModel(s.now())
	if err != nil {
		return nil, grpcStatus(err)
	}
	if err := s.limiter.check(ctx, booker); err != nil {
		return nil, grpcStatus(err)
	}
	booking, err := s.bookings.CreateBooking(ctx, in, booker)
	if err != nil {
		s.limiter.release(ctx, booker)
		return nil, grpcStatus(err)
	}
	return &BookingResponse{Booking: booking}, nil
}

func (s *BookingGRPCService) ConfirmBooking(ctx context.Context, req *ConfirmBookingRequest) (*BookingResponse, error) {
	owner, err := metadataUserID(ctx)
	if err != nil {
		return nil, grpcStatus(err)
	}
	booking, err := s.bookings.ConfirmBooking(ctx, owner, req.BookingID, req.Approved)
	if err != nil {
		return nil, grpcStatus(err)
	}
	return &BookingResponse{Booking: booking}, nil
}

func (s *BookingGRPCService) GetBooking(ctx context.Context, req *GetBookingRequest) (*BookingResponse, error) {
	viewer, err := metadataUserID(ctx)
	if err != nil {
		return nil, grpcStatus(err)
	}
	booking, err := s.bookings.GetBooking(ctx, viewer, req.BookingID)
	if err != nil {
		return nil, grpcStatus(err)
	}
	return &BookingResponse{Booking: booking}, nil
}

func (s *BookingGRPCService) ListUserBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error) {
	return s.list(ctx, req, s.bookings.GetUserBookings)
}

func (s *BookingGRPCService) ListOwnerBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error) {
	return s.list(ctx, req, s.bookings.GetOwnerBookings)
}

func (s *BookingGRPCService) list(ctx context.Context, req *ListBookingsRequest, list bookingLister) (*ListBookingsResponse, error) {
	actor, err := metadataUserID(ctx)
	if err != nil {
		return nil, grpcStatus(err)
	}
	state := req.State
	if state == "" {
		state = string(models.StateAll)
	}
	size := req.Size
	if size == 0 {
		size = s.paging.DefaultPageSize
	}
	if req.From < 0 || req.From > s.paging.MaxPageFrom || size < 1 || size > s.paging.MaxPageSize {
		return nil, grpcStatus(fmt.Errorf("from/size out of range: %w", domain.ErrValidation))
	}
	bookings, err := list(ctx, actor, state, req.From, size)
	if err != nil {
		return nil, grpcStatus(err)
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	return &ListBookingsResponse{Bookings: bookings}, nil
}

func metadataUserID(ctx context.Context) (int64, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	id, err := strconv.ParseInt(first(md.Get(userIDMetadataKey)), 10, 64)
	if err != nil || id <= 0 {
		return 0, errMissingUserID
	}
	return id, nil
}

func unaryHandler[Req any, Resp any](method string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + bookingServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var bookingServiceDesc = grpc.ServiceDesc{
	ServiceName: bookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateBooking", Handler: unaryHandler("CreateBooking", BookingServiceServer.CreateBooking)},
		{MethodName: "ConfirmBooking", Handler: unaryHandler("ConfirmBooking", BookingServiceServer.ConfirmBooking)},
		{MethodName: "GetBooking", Handler: unaryHandler("GetBooking", BookingServiceServer.GetBooking)},
		{MethodName: "ListUserBookings", Handler: unaryHandler("ListUserBookings", BookingServiceServer.ListUserBookings)},
		{MethodName: "ListOwnerBookings", Handler: unaryHandler("ListOwnerBookings", BookingServiceServer.ListOwnerBookings)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shareit/booking/v1/booking.proto",
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&bookingServiceDesc, srv)
}

// BookingClient calls the booking service with the JSON codec.
type BookingClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingClient(cc grpc.ClientConnInterface) *BookingClient {
	return &BookingClient{cc: cc}
}

// WithUserID attaches the acting user to outgoing calls.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return metadata.AppendToOutgoingContext(ctx, userIDMetadataKey, strconv.FormatInt(userID, 10))
}

func (c *BookingClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+bookingServiceName+"/"+method, in, out, opts...)
}

func (c *BookingClient) CreateBooking(ctx context.Context, in *CreateBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	out := new(BookingResponse)
	if err := c.invoke(ctx, "CreateBooking", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) ConfirmBooking(ctx context.Context, in *ConfirmBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	out := new(BookingResponse)
	if err := c.invoke(ctx, "ConfirmBooking", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) GetBooking(ctx context.Context, in *GetBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	out := new(BookingResponse)
	if err := c.invoke(ctx, "GetBooking", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) ListUserBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	out := new(ListBookingsResponse)
	if err := c.invoke(ctx, "ListUserBookings", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) ListOwnerBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*ListBookingsResponse, error) {
	out := new(ListBookingsResponse)
	if err := c.invoke(ctx, "ListOwnerBookings", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
