package auth

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Scope verbs used in BadRequest and Forbidden messages.
const (
	VerbAccess = "access"
	VerbRemove = "remove"
	VerbView   = "view"
	VerbBook   = "book"
	VerbCancel = "cancel"
)

// Guard turns a raw bearer token into an Identity. It holds no mutable state.
type Guard struct {
	tokens *TokenService
	binder HostBinder
	// honour testing="True" in the token and skip host binding
	allowTestingClaim bool
}

type GuardOption func(*Guard)

// AllowTestingClaim lets tokens carrying testing="True" skip host binding.
func AllowTestingClaim() GuardOption {
	return func(g *Guard) { g.allowTestingClaim = true }
}

func NewGuard(tokens *TokenService, binder HostBinder, opts ...GuardOption) *Guard {
	g := &Guard{tokens: tokens, binder: binder}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Authenticate verifies the token and checks that it is presented from the
// origin it was issued to.
func (g *Guard) Authenticate(raw, origin string) (Identity, *Claims, error) {
	c, id, err := g.tokens.Verify(raw)
	if err != nil {
		return Identity{}, nil, err
	}
	if err := g.CheckHostBinding(c, origin); err != nil {
		return Identity{}, nil, err
	}
	return id, c, nil
}

func (g *Guard) CheckHostBinding(c *Claims, origin string) error {
	if g.allowTestingClaim && c.Testing == TestingOn {
		return nil
	}
	if !g.binder.Matches(c.Host, origin) {
		return ErrUnauthenticated
	}
	return nil
}

// ResolveScope decides which client a request operates on. The administrator
// must name one; a client may only name itself and defaults to itself.
func ResolveScope(id Identity, requested *int64, verb string) (int64, error) {
	if id.IsAdmin() {
		if requested == nil {
			return 0, status.Errorf(codes.InvalidArgument, "Need to specify client to %s", verb)
		}
		return *requested, nil
	}
	if requested != nil && *requested != id.ClientID() {
		return 0, status.Errorf(codes.PermissionDenied, "Cannot %s client id: %d", verb, *requested)
	}
	return id.ClientID(), nil
}
