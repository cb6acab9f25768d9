package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/store-admin/internal/domain"
)

var (
	// ErrTokenInvalid covers bad signatures, malformed tokens and unexpected algorithms.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired is returned once the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrMissingSecret means no signing secret is configured.
	ErrMissingSecret = errors.New("jwt signing secret not configured")
)

// TokenManager issues and verifies HS256 access and refresh tokens. It holds no
// state besides its configuration and performs no I/O.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager builds a new manager. Non-positive lifetimes fall back to
// 15 minutes and 7 days.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests to move past expiry.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// AccessTTL returns the configured access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration { return tm.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration { return tm.refreshTTL }

// Claims describes the JWT payload. Email and Role are only set on access tokens.
type Claims struct {
	AccountID string           `json:"id"`
	Email     string           `json:"email,omitempty"`
	Role      domain.Role      `json:"role,omitempty"`
	Type      domain.TokenType `json:"type"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs {id, email, role, type:"access"}.
func (tm *TokenManager) IssueAccessToken(account *domain.Account) (domain.IssuedToken, error) {
	return tm.sign(Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		Type:      domain.TokenTypeAccess,
	}, tm.accessTTL)
}

// IssueRefreshToken signs {id, type:"refresh"}. Every token carries a unique
// jti so two refresh tokens minted within the same second still differ.
func (tm *TokenManager) IssueRefreshToken(account *domain.Account) (domain.IssuedToken, error) {
	return tm.sign(Claims{
		AccountID: account.ID,
		Type:      domain.TokenTypeRefresh,
	}, tm.refreshTTL)
}

// IssuePair mints a fresh access and refresh token for account.
func (tm *TokenManager) IssuePair(account *domain.Account) (domain.TokenPair, error) {
	access, err := tm.IssueAccessToken(account)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := tm.IssueRefreshToken(account)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (tm *TokenManager) sign(claims Claims, ttl time.Duration) (domain.IssuedToken, error) {
	if len(tm.secret) == 0 {
		return domain.IssuedToken{}, ErrMissingSecret
	}

	now := tm.now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   claims.AccountID,
		ExpiresAt: expiresAt,
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("sign jwt: %w", err)
	}
	return domain.IssuedToken{Value: tokenString, ExpiresAt: expiresAt.Time}, nil
}

// Verify checks signature, algorithm and expiry and returns the decoded claims.
// It never consults a store; type checks are left to the caller.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	if len(tm.secret) == 0 {
		return nil, ErrMissingSecret
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.AccountID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Now returns the manager's clock reading, shared with callers that compare
// against stored expiries.
func (tm *TokenManager) Now() time.Time { return tm.now() }
