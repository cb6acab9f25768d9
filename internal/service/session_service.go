package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/store-admin/internal/auth"
	"github.com/spec-kit/store-admin/internal/domain"
	"github.com/spec-kit/store-admin/internal/events"
	"github.com/spec-kit/store-admin/internal/repository"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// SessionService drives the login, refresh and logout transitions of an
// account's session. The live refresh token is tracked by fingerprint on the
// account row; nothing else mutates those fields.
type SessionService struct {
	accounts   repository.AccountRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// SessionDependencies bundles collaborators for the session service.
type SessionDependencies struct {
	AccountRepo  repository.AccountRepository
	TokenManager *auth.TokenManager
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewSessionService builds the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		accounts:   deps.AccountRepo,
		tokens:     deps.TokenManager,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Account *domain.Account
	Tokens  domain.TokenPair
}

// Login authenticates by email and password and starts a new session,
// replacing any refresh token issued before.
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(apperrors.CodeBadCredentials, "incorrect password")
	}
	if !account.Active {
		return nil, apperrors.NewAccountInactive()
	}

	pair, err := s.issue(account)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SaveSession(ctx, account.ID, auth.Fingerprint(pair.Refresh.Value), pair.Refresh.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventSessionStarted, account.ID, events.SessionPayload{RefreshExpiresAt: pair.Refresh.ExpiresAt})
	return &LoginResult{Account: account, Tokens: pair}, nil
}

// Refresh exchanges the account's live refresh token for a new pair. The old
// refresh token is rotated out; of two concurrent calls presenting the same
// token at most one succeeds.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return domain.TokenPair{}, apperrors.NewValidationError("refresh token is required", nil)
	}

	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return domain.TokenPair{}, auth.VerifyError(err, "refresh token")
	}
	if claims.Type != domain.TokenTypeRefresh {
		return domain.TokenPair{}, apperrors.NewUnauthorized(apperrors.CodeInvalidTokenType, "a refresh token is required")
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TokenPair{}, apperrors.NewNotFound("account", nil)
		}
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	if !auth.MatchesFingerprint(refreshToken, account.RefreshFingerprint) {
		reason := "rotated"
		if account.RefreshFingerprint == nil {
			reason = "no_session"
		}
		s.publish(ctx, events.EventRefreshReuseDetected, account.ID, events.ReusePayload{Reason: reason})
		return domain.TokenPair{}, apperrors.NewUnauthorized(apperrors.CodeStaleRefresh, "refresh token is no longer valid")
	}
	if !account.HasLiveSession(s.tokens.Now()) {
		return domain.TokenPair{}, apperrors.NewUnauthorized(apperrors.CodeStaleRefresh, "session expired")
	}
	if !account.Active {
		return domain.TokenPair{}, apperrors.NewAccountInactive()
	}

	pair, err := s.issue(account)
	if err != nil {
		return domain.TokenPair{}, err
	}
	rotated, err := s.accounts.RotateSession(ctx, account.ID, *account.RefreshFingerprint,
		auth.Fingerprint(pair.Refresh.Value), pair.Refresh.ExpiresAt)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	if !rotated {
		s.publish(ctx, events.EventRefreshReuseDetected, account.ID, events.ReusePayload{Reason: "concurrent_rotation"})
		return domain.TokenPair{}, apperrors.NewUnauthorized(apperrors.CodeStaleRefresh, "refresh token is no longer valid")
	}

	s.publish(ctx, events.EventSessionRotated, account.ID, events.SessionPayload{RefreshExpiresAt: pair.Refresh.ExpiresAt})
	return pair, nil
}

// Logout ends the account's session. Logging out without a session succeeds.
func (s *SessionService) Logout(ctx context.Context, accountID string) error {
	accountID, err := requireID(accountID, "account")
	if err != nil {
		return err
	}
	if err := s.accounts.ClearSession(ctx, accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("account", nil)
		}
		return apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventSessionRevoked, accountID, nil)
	return nil
}

func (s *SessionService) issue(account *domain.Account) (domain.TokenPair, error) {
	pair, err := s.tokens.IssuePair(account)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			return domain.TokenPair{}, apperrors.NewConfigurationError(err)
		}
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	return pair, nil
}

func (s *SessionService) publish(ctx context.Context, eventType events.EventType, accountID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: accountID,
		Timestamp: s.tokens.Now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("session event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
