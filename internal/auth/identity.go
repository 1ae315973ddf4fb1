package auth

import (
	"strconv"

	"booking-api/internal/model"
)

// Identity is who a verified token speaks for: the administrator or exactly
// one client. The zero value is the administrator.
type Identity struct {
	client int64
}

func Admin() Identity { return Identity{} }

// Client returns the identity for a stored client. id must be positive.
func Client(id int64) Identity { return Identity{client: id} }

func (i Identity) IsAdmin() bool { return i.client == model.AdminID }

// ClientID is the identity claim value; 0 for the administrator.
func (i Identity) ClientID() int64 { return i.client }

func (i Identity) String() string {
	if i.IsAdmin() {
		return "admin"
	}
	return "client:" + strconv.FormatInt(i.client, 10)
}

// Claim renders the identity as the string-encoded client_id claim.
func (i Identity) Claim() string { return strconv.FormatInt(i.client, 10) }

// ParseIdentity reads a client_id claim. Only non-negative decimal integers
// are well formed.
func ParseIdentity(claim string) (Identity, bool) {
	if claim == "" || claim[0] < '0' || claim[0] > '9' {
		return Identity{}, false
	}
	id, err := strconv.ParseInt(claim, 10, 64)
	if err != nil || id < 0 {
		return Identity{}, false
	}
	return Identity{client: id}, true
}
