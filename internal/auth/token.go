package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TestingOn  = "True"
	TestingOff = "False"
)

var ErrBadToken = errors.New("invalid token")

// Claims is the canonical token body.
type Claims struct {
	ClientID string `json:"client_id"`
	Host     string `json:"host"`
	Testing  string `json:"testing,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig is fixed for the life of the process.
type TokenConfig struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

// TokenService mints and verifies HMAC-signed bearer tokens. Verification is
// a pure function of the token, the secret and the clock.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	m := jwt.GetSigningMethod(alg)
	if _, ok := m.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", alg)
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		method: m,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of s that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Issue signs {client_id, host} with an expiry of now + TTL. The testing
// claim is left at its default.
func (s *TokenService) Issue(id Identity, host string) (string, error) {
	now := s.now()
	c := Claims{
		ClientID: id.Claim(),
		Host:     host,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(s.method, c).SignedString(s.secret)
}

// Verify checks signature, algorithm, expiry and shape. Any failure is
// reported as ErrUnauthenticated so callers cannot tell forged from expired.
func (s *TokenService) Verify(raw string) (*Claims, Identity, error) {
	c, id, err := s.parse(raw)
	if err != nil {
		return nil, Identity{}, ErrUnauthenticated
	}
	return c, id, nil
}

func (s *TokenService) parse(raw string) (*Claims, Identity, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, Identity{}, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, Identity{}, ErrBadToken
	}
	id, ok := ParseIdentity(c.ClientID)
	if !ok {
		return nil, Identity{}, ErrBadToken
	}
	switch c.Testing {
	case "":
		c.Testing = TestingOff
	case TestingOn, TestingOff:
	default:
		return nil, Identity{}, ErrBadToken
	}
	return c, id, nil
}
