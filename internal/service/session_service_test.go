package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/store-admin/internal/auth"
	"github.com/spec-kit/store-admin/internal/domain"
	"github.com/spec-kit/store-admin/internal/events"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

func TestLoginIssuesPairAndStoresFingerprint(t *testing.T) {
	f := newSessionFixture(t, testSecret)
	ctx := context.Background()

	result, err := f.service.Login(ctx, " A@X.com ", "secret1")
	require.NoError(t, err)
	require.Equal(t, f.account.ID, result.Account.ID)
	require.NotEmpty(t, result.Tokens.Access.Value)
	require.NotEmpty(t, result.Tokens.Refresh.Value)

	stored, err := f.accounts.GetByID(ctx, f.account.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshFingerprint)
	require.Equal(t, auth.Fingerprint(result.Tokens.Refresh.Value), *stored.RefreshFingerprint)
	require.NotEqual(t, result.Tokens.Refresh.Value, *stored.RefreshFingerprint)
	require.WithinDuration(t, f.clock.Now().Add(7*24*time.Hour), *stored.RefreshExpiresAt, time.Second)

	require.Equal(t, []events.EventType{events.EventSessionStarted}, f.events.types())
}

func TestLoginFailures(t *testing.T) {
	f := newSessionFixture(t, testSecret)
	ctx := context.Background()

	_, err := f.service.Login(ctx, "", "secret1")
	requireCode(t, err, http.StatusBadRequest, apperrors.CodeValidation)

	_, err = f.service.Login(ctx, "a@x.com", "")
	requireCode(t, err, http.StatusBadRequest, apperrors.CodeValidation)

	_, err = f.service.Login(ctx, "nobody@x.com", "secret1")
	requireCode(t, err, http.StatusNotFound, apperrors.CodeNotFound)

	_, err = f.service.Login(ctx, "a@x.com", "wrong")
	requireCode(t, err, http.StatusUnauthorized, apperrors.CodeBadCredentials)

	f.setActive(t, false)
	_, err = f.service.Login(ctx, "a@x.com", "secret1")
	requireCode(t, err, http.StatusForbidden, apperrors.CodeAccountInactive)
}

func TestLoginWithoutSecretIsConfigurationError(t *testing.T) {
	f := newSessionFixture(t, "")
	_, err := f.service.Login(context.Background(), "a@x.com", "secret1")
	requireCode(t, err, http.StatusInternalServerError, apperrors.CodeConfiguration)
}

func TestSecondLoginInvalidatesPreviousRefreshToken(t *testing.T) {
	f := newSessionFixture(t, testSecret)
	ctx := context.Background()

	first, err := f.service.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	second, err := f.service.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, first.Tokens.Refresh.Value)
	requireCode(t, err, http.StatusUnauthorized, apperrors.CodeStaleRefresh)

	_, err = f.service.Refresh(ctx, second.Tokens.Refresh.Value)
	require.NoError(t, err)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newSessionFixture(t, testSecret)
	ctx := context.Background()

	login, err := f.service.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	pair, err := f.service.Refresh(ctx, login.Tokens.Refresh.Value)
	require.NoError(t, err)
	require.NotEqual(t, login.Tokens.Refresh.Value, pair.Refresh.Value)

	_, err = f.service.Refresh(ctx, login.Tokens.Refresh.Value)
	requireCode(t, err, http.StatusUnauthorized, apperrors.CodeStaleRefresh)

	next, err := f.service.Refresh(ctx, pair.Refresh.Value)
	require.NoError(t, err)
	require.NotEmpty(t, next.Access.Value)

	require.Equal(t, []events.EventType{
		events.EventSessionStarted,
		events.EventSessionRotated,
		events.EventRefreshReuseDetected,
		events.EventSessionRotated,
	}, f.events.types())
}

func TestRefreshRejectsWrongInput(t *testing.T) {
	f := newSessionFixture(t, testSecret)
	ctx := context.Background()

	login, err := f.service.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, "  ")
	requireCode(t, err, http.StatusBadRequest, apperrors.CodeValidation)

	_, err = f.service.Refresh(ctx, "garbage")
	requireCode(t, err, http.StatusUnauthorized, apperrors.CodeInvalidToken)

	_, err = f.service.Refresh(ctx, login.Tokens.Access.Value)
	requireCode(t, err, http.StatusUnauthorized, apperrors.CodeInvalidTokenType)

	require.NoError(t, f.accounts.Delete(ctx, f.account.ID))
	_, err = f.service.Refresh(ctx, login.Tokens.Refresh.Value)
	requireCode(t, err, http.StatusNotFound, apperrors.CodeNotFound)
}

func TestRefreshExpiry(t *testing.T) {
	f := newSessionFixture(t, testSecret)
	ctx := context.Background()

	login, err := f.service.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	// Stored expiry earlier than the token's own.
	past := f.clock.Now().Add(-time.Minute)
	require.NoError(t, f.accounts.SaveSession(ctx, f.account.ID, auth.Fingerprint(login.Tokens.Refresh.Value), past))
	_, err = f.service.Refresh(ctx, login.Tokens.Refresh.Value)
	requireCode(t, err, http.StatusUnauthorized, apperrors.CodeStaleRefresh)

	login, err = f.service.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	f.clock.Advance(8 * 24 * time.Hour)
	_, err = f.service.Refresh(ctx, login.Tokens.Refresh.Value)
	requireCode(t, err, http.StatusUnauthorized, apperrors.CodeTokenExpired)
}

func TestRefreshInactiveAccount(t *testing.T) {
	f := newSessionFixture(t, testSecret)
	ctx := context.Background()

	login, err := f.service.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	f.setActive(t, false)
	_, err = f.service.Refresh(ctx, login.Tokens.Refresh.Value)
	requireCode(t, err, http.StatusForbidden, apperrors.CodeAccountInactive)
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	f := newSessionFixture(t, testSecret)
	ctx := context.Background()

	login, err := f.service.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes []domain.TokenPair
		failures  []error
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			pair, err := f.service.Refresh(ctx, login.Tokens.Refresh.Value)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			successes = append(successes, pair)
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, successes, 1)
	require.Len(t, failures, callers-1)
	for _, err := range failures {
		requireCode(t, err, http.StatusUnauthorized, apperrors.CodeStaleRefresh)
	}

	stored, err := f.accounts.GetByID(ctx, f.account.ID)
	require.NoError(t, err)
	require.Equal(t, auth.Fingerprint(successes[0].Refresh.Value), *stored.RefreshFingerprint)
}

func TestLogout(t *testing.T) {
	f := newSessionFixture(t, testSecret)
	ctx := context.Background()

	login, err := f.service.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, f.account.ID))
	require.NoError(t, f.service.Logout(ctx, f.account.ID))

	stored, err := f.accounts.GetByID(ctx, f.account.ID)
	require.NoError(t, err)
	require.Nil(t, stored.RefreshFingerprint)
	require.Nil(t, stored.RefreshExpiresAt)

	_, err = f.service.Refresh(ctx, login.Tokens.Refresh.Value)
	requireCode(t, err, http.StatusUnauthorized, apperrors.CodeStaleRefresh)

	err = f.service.Logout(ctx, "not-a-uuid")
	requireCode(t, err, http.StatusBadRequest, apperrors.CodeValidation)

	err = f.service.Logout(ctx, "6f1c2d3e-4b5a-4978-8a6b-5c4d3e2f1a0b")
	requireCode(t, err, http.StatusNotFound, apperrors.CodeNotFound)
}
