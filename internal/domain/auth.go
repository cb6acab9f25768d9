package domain

import "time"

// TokenType discriminates access from refresh tokens inside the signed payload.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Identity is the caller attached to a request by the auth gate.
type Identity struct {
	AccountID string
	Email     string
	Role      Role
}

// IssuedToken is a signed token with its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
