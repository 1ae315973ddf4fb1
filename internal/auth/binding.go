package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net"

	"golang.org/x/crypto/blake2b"
)

// HostBinder ties a token to the network origin it was issued to.
type HostBinder interface {
	// Bind returns the host claim for origin ("host:port" or bare host).
	Bind(origin string) (string, error)
	// Matches reports whether claim was produced by Bind for origin.
	Matches(claim, origin string) bool
}

// KeyedBinder hashes the origin with a keyed BLAKE2b-256. With IncludePort
// the port is part of the binding ("host-port"), otherwise only the host.
type KeyedBinder struct {
	key         []byte
	includePort bool
}

func NewKeyedBinder(key []byte, includePort bool) (*KeyedBinder, error) {
	if len(key) == 0 {
		return nil, errors.New("binding key is required")
	}
	// blake2b accepts keys up to 64 bytes
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	return &KeyedBinder{key: key, includePort: includePort}, nil
}

func (b *KeyedBinder) Bind(origin string) (string, error) {
	h, err := blake2b.New256(b.key)
	if err != nil {
		return "", err
	}
	h.Write([]byte(b.material(origin)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (b *KeyedBinder) Matches(claim, origin string) bool {
	want, err := b.Bind(origin)
	if err != nil || claim == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(claim), []byte(want)) == 1
}

func (b *KeyedBinder) material(origin string) string {
	host, port, err := net.SplitHostPort(origin)
	if err != nil {
		// not host:port (unix sockets, in-memory listeners)
		return origin
	}
	if b.includePort {
		return host + "-" + port
	}
	return host
}
