package handler

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"booking-api/internal/auth"
	"booking-api/internal/model"
	"booking-api/internal/store"
)

var (
	errBadClient  = status.Error(codes.InvalidArgument, "Data format invalid")
	errEmailInUse = status.Error(codes.AlreadyExists, "Email address in use")
)

type CreateClientRequest struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string
	Address     string
}

func (h *Handler) CreateClient(ctx context.Context, req CreateClientRequest) (*model.Client, error) {
	if !validClient(req) {
		return nil, errBadClient
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, internal(ctx, "hash password", err)
	}

	c := &model.Client{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: hash,
		Address:      strings.TrimSpace(req.Address),
	}
	if err := h.store.CreateClient(ctx, c); err != nil {
		if errors.Is(err, store.ErrEmailInUse) {
			return nil, errEmailInUse
		}
		return nil, internal(ctx, "create client", err)
	}
	return c, nil
}

// GetClient returns the client the caller is scoped to. requested is the
// optional ?id= parameter.
func (h *Handler) GetClient(ctx context.Context, requested *int64) (*model.Client, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	cid, err := auth.ResolveScope(id, requested, auth.VerbAccess)
	if err != nil {
		return nil, err
	}

	c, err := h.store.ClientByID(ctx, cid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, status.Errorf(codes.NotFound, "Client with id: %d does not exist", cid)
	}
	if err != nil {
		return nil, internal(ctx, "get client", err)
	}
	return c, nil
}

func (h *Handler) DeleteClient(ctx context.Context, requested *int64) error {
	id, err := identity(ctx)
	if err != nil {
		return err
	}
	cid, err := auth.ResolveScope(id, requested, auth.VerbRemove)
	if err != nil {
		return err
	}

	err = h.store.DeleteClient(ctx, cid)
	if errors.Is(err, store.ErrNotFound) {
		return status.Errorf(codes.NotFound, "Client with id: %d does not exist", cid)
	}
	if err != nil {
		return internal(ctx, "delete client", err)
	}
	return nil
}

func validClient(req CreateClientRequest) bool {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Address) == "" || req.Password == "" {
		return false
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil || addr.Address != strings.TrimSpace(req.Email) {
		return false
	}
	return validPhone(strings.TrimSpace(req.PhoneNumber))
}

// 10 to 22 characters, at least 10 of them digits, the rest phone punctuation
func validPhone(p string) bool {
	if len(p) < 10 || len(p) > 22 {
		return false
	}
	digits := 0
	for i, r := range p {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == '-', r == '(', r == ')', r == '.', r == ' ':
		default:
			return false
		}
	}
	return digits >= 10
}
