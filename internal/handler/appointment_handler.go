package handler

import (
	"context"
	"errors"
	"math"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"booking-api/internal/auth"
	"booking-api/internal/model"
	"booking-api/internal/store"
)

const (
	minLead = 24 * time.Hour
	maxLead = 16 * 7 * 24 * time.Hour
)

var (
	errPastAppointment = status.Error(codes.PermissionDenied, "Cannot create past appointment")
	errTooFarAhead     = status.Error(codes.PermissionDenied, "Cannot create appointment more than 4 months ahead")
)

// EpochSeconds floors a JSON number of seconds, saturating at the int64 range.
func EpochSeconds(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Floor(f))
}

type ListAppointmentsRequest struct {
	ClientID      *int64
	AppointmentID *int64
	Before        *time.Time
	After         *time.Time
	Paid          *bool
}

func (h *Handler) ListAppointments(ctx context.Context, req ListAppointmentsRequest) ([]model.Appointment, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	cid, err := auth.ResolveScope(id, req.ClientID, auth.VerbView)
	if err != nil {
		return nil, err
	}

	apts, err := h.store.ListAppointments(ctx, cid, model.AppointmentFilter{
		ID:     req.AppointmentID,
		Before: req.Before,
		After:  req.After,
		Paid:   req.Paid,
	})
	if err != nil {
		return nil, internal(ctx, "list appointments", err)
	}
	return apts, nil
}

type CreateAppointmentRequest struct {
	ClientID    *int64
	Date        *int64 // epoch seconds
	Description string
	Price       *float64
	Paid        *bool
}

func (h *Handler) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (*model.Appointment, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	cid, err := auth.ResolveScope(id, req.ClientID, auth.VerbBook)
	if err != nil {
		return nil, err
	}

	if req.Date == nil {
		return nil, status.Error(codes.InvalidArgument, "Must provide date")
	}
	now := h.now()
	// range-check in seconds first; time.Unix wraps for values near the int64 limits
	sec := *req.Date
	if sec < now.Unix() {
		return nil, errPastAppointment
	}
	if sec-now.Unix() > int64(maxLead/time.Second) {
		return nil, errTooFarAhead
	}
	date := time.Unix(sec, 0)
	if date.Before(now.Add(minLead)) {
		return nil, errPastAppointment
	}
	if date.Sub(now) > maxLead {
		return nil, errTooFarAhead
	}
	if req.Description == "" {
		return nil, status.Error(codes.InvalidArgument, "Must provide description")
	}
	if req.Price == nil || *req.Price <= 0 {
		return nil, status.Error(codes.InvalidArgument, "Must provide price")
	}

	apt := &model.Appointment{
		ClientID:    cid,
		Date:        model.Day(date),
		Description: req.Description,
		Price:       *req.Price,
	}
	if req.Paid != nil {
		apt.Paid = *req.Paid
	}

	switch err := h.store.CreateAppointment(ctx, apt); {
	case err == nil:
		return apt, nil
	case errors.Is(err, store.ErrAppointmentExists):
		return nil, status.Error(codes.AlreadyExists, "Appointment already exists for client")
	case errors.Is(err, store.ErrNotFound):
		return nil, status.Errorf(codes.NotFound, "Client with id: %d does not exist", cid)
	default:
		return nil, internal(ctx, "create appointment", err)
	}
}

type CancelAppointmentRequest struct {
	ID       *int64
	ClientID *int64
}

func (h *Handler) CancelAppointment(ctx context.Context, req CancelAppointmentRequest) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	cid, err := auth.ResolveScope(id, req.ClientID, auth.VerbCancel)
	if err != nil {
		return err
	}
	if req.ID == nil {
		return status.Error(codes.InvalidArgument, "Must provide appointment id")
	}

	err = h.store.DeleteAppointment(ctx, *req.ID, cid)
	if errors.Is(err, store.ErrNotFound) {
		return status.Errorf(codes.NotFound, "Appointment with id: %d does not exist for client", *req.ID)
	}
	if err != nil {
		return internal(ctx, "cancel appointment", err)
	}
	return nil
}
