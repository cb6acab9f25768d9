package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/store-admin/internal/domain"
)

const testSecret = "test-secret"

func testAccount() *domain.Account {
	return &domain.Account{
		ID:     "0d9f0a5e-7d1c-4b0e-9a8e-3f2f1d1c0b0a",
		Name:   "Ana",
		Email:  "a@x.com",
		Role:   domain.RoleManager,
		Active: true,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 0, 0)
	account := testAccount()

	access, err := tm.IssueAccessToken(account)
	require.NoError(t, err)
	claims, err := tm.Verify(access.Value)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.AccountID)
	require.Equal(t, account.Email, claims.Email)
	require.Equal(t, account.Role, claims.Role)
	require.Equal(t, domain.TokenTypeAccess, claims.Type)

	refresh, err := tm.IssueRefreshToken(account)
	require.NoError(t, err)
	claims, err = tm.Verify(refresh.Value)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.AccountID)
	require.Equal(t, domain.TokenTypeRefresh, claims.Type)
	require.Empty(t, claims.Email)
}

func TestTokenDefaultsAndExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := NewTokenManager(testSecret, 0, 0).WithClock(func() time.Time { return now })
	require.Equal(t, 15*time.Minute, tm.AccessTTL())
	require.Equal(t, 7*24*time.Hour, tm.RefreshTTL())

	pair, err := tm.IssuePair(testAccount())
	require.NoError(t, err)
	require.Equal(t, now.Add(15*time.Minute), pair.Access.ExpiresAt.UTC())
	require.Equal(t, now.Add(7*24*time.Hour), pair.Refresh.ExpiresAt.UTC())

	now = now.Add(14 * time.Minute)
	_, err = tm.Verify(pair.Access.Value)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = tm.Verify(pair.Access.Value)
	require.ErrorIs(t, err, ErrTokenExpired)

	_, err = tm.Verify(pair.Refresh.Value)
	require.NoError(t, err)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Minute, time.Hour)
	first, err := tm.IssueRefreshToken(testAccount())
	require.NoError(t, err)
	second, err := tm.IssueRefreshToken(testAccount())
	require.NoError(t, err)
	require.NotEqual(t, first.Value, second.Value)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Minute, time.Hour)
	pair, err := tm.IssuePair(testAccount())
	require.NoError(t, err)

	other := NewTokenManager("other-secret", time.Minute, time.Hour)
	_, err = other.Verify(pair.Access.Value)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.Verify(pair.Access.Value + "x")
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrTokenInvalid)

	hs384 := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		AccountID:        "id",
		Type:             domain.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := hs384.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = tm.Verify(signed)
	require.ErrorIs(t, err, ErrTokenInvalid)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{AccountID: "id", Type: domain.TokenTypeAccess})
	signed, err = noExpiry.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = tm.Verify(signed)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestMissingSecret(t *testing.T) {
	tm := NewTokenManager("", time.Minute, time.Hour)
	_, err := tm.IssueAccessToken(testAccount())
	require.ErrorIs(t, err, ErrMissingSecret)
	_, err = tm.IssuePair(testAccount())
	require.ErrorIs(t, err, ErrMissingSecret)
	_, err = tm.Verify("anything")
	require.ErrorIs(t, err, ErrMissingSecret)
}
