package middleware

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"booking-api/internal/auth"
	"booking-api/internal/logger"
	"booking-api/internal/model"
	"booking-api/internal/store"
)

type ctxKey string

const IdentityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(auth.Identity)
	return id, ok
}

type ClientFinder interface {
	ClientByID(ctx context.Context, id int64) (*model.Client, error)
}

// Authenticator runs the per-request chain: bearer token, signature and
// expiry, host binding, then the client row lookup. Admin identities have no
// row to look up.
type Authenticator struct {
	guard   *auth.Guard
	clients ClientFinder
}

func NewAuthenticator(g *auth.Guard, clients ClientFinder) *Authenticator {
	return &Authenticator{guard: g, clients: clients}
}

func (a *Authenticator) Authenticate(ctx context.Context, authorization, origin string) (auth.Identity, error) {
	raw, ok := BearerToken(authorization)
	if !ok {
		return auth.Identity{}, auth.ErrUnauthenticated
	}
	id, _, err := a.guard.Authenticate(raw, origin)
	if err != nil {
		logger.From(ctx).Debug("token rejected", zap.String("origin", origin))
		return auth.Identity{}, err
	}
	if id.IsAdmin() {
		return id, nil
	}
	if _, err := a.clients.ClientByID(ctx, id.ClientID()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.From(ctx).Debug("token for missing client", zap.Int64("client_id", id.ClientID()))
			return auth.Identity{}, auth.ErrUnauthenticated
		}
		logger.From(ctx).Error("client lookup", zap.Error(err))
		return auth.Identity{}, status.Error(codes.Internal, "internal error")
	}
	return id, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// skip auth for these
var open = map[string]bool{
	"/booking.v1.BookingService/Login":        true,
	"/booking.v1.BookingService/CreateClient": true,
	"/grpc.health.v1.Health/Check":            true,
}

// UnaryAuth authenticates every gRPC call except the open ones. The origin is
// the peer address.
func UnaryAuth(a *Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return next(ctx, req)
		}

		header := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("authorization"); len(vals) > 0 {
				header = vals[0]
			}
		}

		id, err := a.Authenticate(ctx, header, PeerOrigin(ctx))
		if err != nil {
			return nil, err
		}
		return next(WithIdentity(ctx, id), req)
	}
}

func PeerOrigin(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}
