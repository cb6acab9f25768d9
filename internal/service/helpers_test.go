package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/store-admin/internal/auth"
	"github.com/spec-kit/store-admin/internal/domain"
	"github.com/spec-kit/store-admin/internal/events"
	"github.com/spec-kit/store-admin/internal/repository"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

const testSecret = "service-test-secret"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type sessionFixture struct {
	accounts repository.AccountRepository
	service  *SessionService
	clock    *clock
	events   *recorder
	account  *domain.Account
}

func newSessionFixture(t *testing.T, secret string) *sessionFixture {
	t.Helper()

	accounts := repository.NewMemoryAccountRepository()
	clk := &clock{now: time.Now().UTC().Truncate(time.Second)}
	tokens := auth.NewTokenManager(secret, 15*time.Minute, 7*24*time.Hour).WithClock(clk.Now)

	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	for _, eventType := range []events.EventType{
		events.EventSessionStarted, events.EventSessionRotated,
		events.EventSessionRevoked, events.EventRefreshReuseDetected,
	} {
		dispatcher.Subscribe(eventType, rec.handle)
	}

	hash, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	account := &domain.Account{
		Name:         "Ana",
		Email:        "a@x.com",
		PasswordHash: hash,
		Role:         domain.RoleCollaborator,
		Active:       true,
	}
	require.NoError(t, accounts.Create(context.Background(), account))

	return &sessionFixture{
		accounts: accounts,
		service: NewSessionService(SessionDependencies{
			AccountRepo:  accounts,
			TokenManager: tokens,
			Dispatcher:   dispatcher,
		}),
		clock:   clk,
		events:  rec,
		account: account,
	}
}

func (f *sessionFixture) setActive(t *testing.T, active bool) {
	t.Helper()
	account, err := f.accounts.GetByID(context.Background(), f.account.ID)
	require.NoError(t, err)
	account.Active = active
	require.NoError(t, f.accounts.Update(context.Background(), account))
}

func requireCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, status, domainErr.HTTPStatus, domainErr.Message)
	require.Equal(t, code, domainErr.Code)
}
