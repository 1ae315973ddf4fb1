package handler

import (
	"context"

	"google.golang.org/grpc/status"
)

const TokenType = "bearer"

type LoginRequest struct {
	Username string
	Password string
	// Origin is the caller's "host:port" the token will be bound to.
	Origin string
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	tok, _, err := h.login.Login(ctx, req.Username, req.Password, req.Origin)
	if err != nil {
		if _, ok := status.FromError(err); ok {
			return nil, err
		}
		return nil, internal(ctx, "login", err)
	}
	return &TokenResponse{AccessToken: tok, TokenType: TokenType}, nil
}
