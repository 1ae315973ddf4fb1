package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"booking-api/internal/auth"
	"booking-api/internal/model"
	"booking-api/internal/store"
)

type fakeClients map[int64]error

func (f fakeClients) ClientByID(_ context.Context, id int64) (*model.Client, error) {
	err, ok := f[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &model.Client{ID: id}, nil
}

// trusts any origin
type anyOrigin struct{}

func (anyOrigin) Bind(string) (string, error)  { return "any", nil }
func (anyOrigin) Matches(claim, _ string) bool { return claim == "any" }

func newAuthenticator(t *testing.T, clients fakeClients) (*Authenticator, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "s", TTL: time.Minute})
	require.NoError(t, err)
	return NewAuthenticator(auth.NewGuard(tokens, anyOrigin{}), clients), tokens
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		tok    string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  BEARER   abc ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		tok, ok := BearerToken(tt.header)
		require.Equal(t, tt.ok, ok, tt.header)
		require.Equal(t, tt.tok, tok, tt.header)
	}
}

func TestAuthenticate(t *testing.T) {
	a, tokens := newAuthenticator(t, fakeClients{1: nil, 2: errors.New("db down")})
	ctx := context.Background()

	issue := func(id auth.Identity) string {
		tok, err := tokens.Issue(id, "any")
		require.NoError(t, err)
		return "Bearer " + tok
	}

	id, err := a.Authenticate(ctx, issue(auth.Client(1)), "o")
	require.NoError(t, err)
	require.Equal(t, auth.Client(1), id)

	id, err = a.Authenticate(ctx, issue(auth.Admin()), "o")
	require.NoError(t, err)
	require.True(t, id.IsAdmin())

	_, err = a.Authenticate(ctx, issue(auth.Client(9)), "o")
	require.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = a.Authenticate(ctx, issue(auth.Client(2)), "o")
	require.Equal(t, codes.Internal, status.Code(err))

	_, err = a.Authenticate(ctx, "", "o")
	require.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestUnaryAuth(t *testing.T) {
	a, tokens := newAuthenticator(t, fakeClients{1: nil})
	intercept := UnaryAuth(a)

	var seen auth.Identity
	next := func(ctx context.Context, req any) (any, error) {
		seen, _ = IdentityFrom(ctx)
		return "ok", nil
	}

	_, err := intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/booking.v1.BookingService/Login"}, next)
	require.NoError(t, err)

	info := &grpc.UnaryServerInfo{FullMethod: "/booking.v1.BookingService/GetClient"}
	_, err = intercept(context.Background(), nil, info, next)
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	tok, err := tokens.Issue(auth.Client(1), "any")
	require.NoError(t, err)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))
	resp, err := intercept(ctx, nil, info, next)
	require.NoError(t, err)
	require.Equal(t, "ok", resp)
	require.Equal(t, auth.Client(1), seen)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	require.False(t, ok)

	id, ok := IdentityFrom(WithIdentity(context.Background(), auth.Admin()))
	require.True(t, ok)
	require.True(t, id.IsAdmin())

	require.Equal(t, "unknown", PeerOrigin(context.Background()))
}
