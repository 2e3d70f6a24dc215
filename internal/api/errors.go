package api

import (
	"errors"
	"net/http"

	"shareit/internal/domain"
	"shareit/internal/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	errMissingUserID     = errors.New("missing or invalid " + models.HeaderUserID + " header")
	errBookingLimit      = errors.New("booking limit exceeded")
	errRateLimit         = errors.New("rate limit exceeded")
	errPermissionDenied  = errors.New("permission denied")
	errInternal          = errors.New("internal error")
	errInvalidQueryParam = errors.New("invalid query parameter")
)

// httpStatus maps a service error onto a status code and the message shown to the client.
func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedState):
		return http.StatusInternalServerError, models.UnsupportedStateMessage
	case errors.Is(err, domain.ErrEntityNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrNotAvailable), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, errMissingUserID), errors.Is(err, errInvalidQueryParam):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errBookingLimit), errors.Is(err, errRateLimit):
		return http.StatusTooManyRequests, err.Error()
	default:
		return http.StatusInternalServerError, errInternal.Error()
	}
}

func grpcStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrUnsupportedState):
		return status.Error(codes.Internal, models.UnsupportedStateMessage)
	case errors.Is(err, domain.ErrEntityNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrNotAvailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrValidation), errors.Is(err, errMissingUserID), errors.Is(err, errInvalidQueryParam):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, errBookingLimit), errors.Is(err, errRateLimit):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, errInternal.Error())
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
