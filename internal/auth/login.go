package auth

import (
	"context"
	"errors"
	"fmt"

	"booking-api/internal/model"
	"booking-api/internal/store"
)

// CredentialStore returns store.ErrNotFound for unknown emails.
type CredentialStore interface {
	ClientByEmail(ctx context.Context, email string) (*model.Client, error)
}

// AdminCredentials configure the administrator login. PasswordHash is a
// bcrypt digest. An empty Username disables the admin branch.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

type LoginService struct {
	admin  AdminCredentials
	store  CredentialStore
	tokens *TokenService
	binder HostBinder
}

func NewLoginService(admin AdminCredentials, st CredentialStore, tokens *TokenService, binder HostBinder) *LoginService {
	return &LoginService{admin: admin, store: st, tokens: tokens, binder: binder}
}

// Login exchanges credentials for a token bound to origin. Unknown email and
// wrong password fail with the same ErrInvalidCredentials.
func (l *LoginService) Login(ctx context.Context, username, password, origin string) (string, Identity, error) {
	id, err := l.identify(ctx, username, password)
	if err != nil {
		return "", Identity{}, err
	}
	host, err := l.binder.Bind(origin)
	if err != nil {
		return "", Identity{}, fmt.Errorf("bind origin: %w", err)
	}
	tok, err := l.tokens.Issue(id, host)
	if err != nil {
		return "", Identity{}, fmt.Errorf("issue token: %w", err)
	}
	return tok, id, nil
}

func (l *LoginService) identify(ctx context.Context, username, password string) (Identity, error) {
	// the admin name never reaches the store; one bcrypt compare either way
	if l.admin.Username != "" && username == l.admin.Username {
		if CheckPassword(l.admin.PasswordHash, password) {
			return Admin(), nil
		}
		return Identity{}, ErrInvalidCredentials
	}

	c, err := l.store.ClientByEmail(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		CheckPassword(string(dummyHash), password)
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, fmt.Errorf("lookup client: %w", err)
	}
	if !CheckPassword(c.PasswordHash, password) {
		return Identity{}, ErrInvalidCredentials
	}
	if c.ID <= model.AdminID {
		// a stored row must never mint the admin claim
		return Identity{}, ErrInvalidCredentials
	}
	return Client(c.ID), nil
}
