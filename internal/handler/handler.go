package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"booking-api/internal/auth"
	"booking-api/internal/logger"
	"booking-api/internal/middleware"
	"booking-api/internal/store"
)

var errInternal = status.Error(codes.Internal, "internal error")

// Handler implements the booking operations independent of transport. Every
// error it returns is a gRPC status.
type Handler struct {
	store store.Repository
	login *auth.LoginService
	now   func() time.Time
}

func New(st store.Repository, login *auth.LoginService) *Handler {
	return &Handler{store: st, login: login, now: time.Now}
}

// WithClock replaces the handler's time source.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// identity is set by the auth middleware on every protected call.
func identity(ctx context.Context) (auth.Identity, error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return auth.Identity{}, auth.ErrUnauthenticated
	}
	return id, nil
}

func internal(ctx context.Context, op string, err error) error {
	logger.From(ctx).Error(op, zap.Error(err))
	return errInternal
}
