package auth

import (
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Errors returned by the auth core. The messages are part of the public API.
var (
	ErrUnauthenticated    = status.Error(codes.Unauthenticated, "Could not validate credentials")
	ErrInvalidCredentials = status.Error(codes.PermissionDenied, "Invalid Credentials")
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// burned on unknown emails so both login failure paths pay one bcrypt compare
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
