// Package service implements the credential/session lifecycle: issuance on
// login, rotation on refresh, revocation on logout, and verification on every
// protected request.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	accountdomain "user-management-api/internal/account/domain"
	"user-management-api/internal/apperr"
	"user-management-api/internal/security"
	sessiondomain "user-management-api/internal/session/domain"
)

// Typed lifecycle errors; handlers render them by kind. SecretMismatch and
// MalformedToken deliberately render the same external body as
// SessionInvalid.
var (
	ErrInvalidCredentials = apperr.New(apperr.KindInvalidCredentials, "invalid credentials")
	ErrMalformedToken     = apperr.New(apperr.KindMalformedToken, "malformed refresh token")
	ErrSessionInvalid     = apperr.New(apperr.KindSessionInvalid, "session not found or revoked")
	ErrSecretMismatch     = apperr.New(apperr.KindSecretMismatch, "refresh secret mismatch")
	ErrInvalidAccessToken = apperr.New(apperr.KindSessionInvalid, "invalid or expired access token")
	ErrAccountMissing     = apperr.New(apperr.KindSessionInvalid, "account not found")
	ErrLoginContention    = apperr.New(apperr.KindConflict, "login lost a concurrent update race, retry")
)

// loginAttempts bounds retries when a login races another login or a rotate
// on the same account's session slot.
const loginAttempts = 3

// AccountRepo is the minimal account repository needed by the auth service.
type AccountRepo interface {
	GetByEmail(ctx context.Context, email string) (*accountdomain.Account, error)
	GetByID(ctx context.Context, id string) (*accountdomain.Account, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
// UpdateSecret is login's slot-reuse write and may reactivate a row;
// RotateSecret is refresh's write and must fail on a revoked row.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	FindCurrentByAccount(ctx context.Context, accountID string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	UpdateSecret(ctx context.Context, id, expectedHash, newHash string, expiresAt time.Time) error
	RotateSecret(ctx context.Context, id, expectedHash, newHash string, expiresAt time.Time) error
	Revoke(ctx context.Context, id string) error
}

// Credentials is the outcome of Login or Refresh.
type Credentials struct {
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
	Account         *accountdomain.Account // set on login only
}

// Identity is the outcome of Verify: the resolved account and its session.
type Identity struct {
	Account *accountdomain.Account
	Session *sessiondomain.Session
}

// AuthService is the session state machine. It holds no in-process session
// state; all shared state lives in the session store and every mutation is a
// conditional write.
type AuthService struct {
	accounts   AccountRepo
	sessions   SessionRepo
	hasher     *security.Hasher
	tokens     *security.TokenProvider
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	accounts AccountRepo,
	sessions SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	refreshTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:   accounts,
		sessions:   sessions,
		hasher:     hasher,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// Login authenticates email/password and establishes the account's single
// active session: the existing unrevoked slot is reused with a fresh secret
// and expiry, otherwise a new session row is created. Racing writers are
// resolved by the store's conditional writes; the loser retries from its own
// read, bounded by loginAttempts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Credentials, error) {
	email = accountdomain.NormalizeEmail(email)
	if email == "" {
		return nil, apperr.New(apperr.KindValidation, "email required")
	}
	if password == "" {
		return nil, apperr.New(apperr.KindValidation, "password required")
	}

	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	// Identical failure for unknown email and wrong password.
	if acct == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(acct.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	for attempt := 0; attempt < loginAttempts; attempt++ {
		sessionID, rawSecret, err := s.establishSession(ctx, acct.ID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindConflict) {
				continue
			}
			return nil, err
		}
		accessToken, accessExp, err := s.tokens.IssueAccess(acct.ID, sessionID)
		if err != nil {
			return nil, apperr.Infra(err)
		}
		return &Credentials{
			AccessToken:     accessToken,
			AccessExpiresAt: accessExp,
			RefreshToken:    security.EncodeRefreshToken(sessionID, rawSecret),
			Account:         acct,
		}, nil
	}
	return nil, ErrLoginContention
}

// establishSession performs one read-modify-write pass over the account's
// session slot and returns the session id plus the raw refresh secret.
func (s *AuthService) establishSession(ctx context.Context, accountID string) (sessionID, rawSecret string, err error) {
	rawSecret, err = security.GenerateSecret(security.DefaultSecretBytes)
	if err != nil {
		// Entropy failure is fatal for the request, never retried.
		return "", "", apperr.Infra(err)
	}
	secretHash, err := s.hasher.Hash([]byte(rawSecret))
	if err != nil {
		return "", "", apperr.Infra(err)
	}
	now := time.Now().UTC()
	expiresAt := now.Add(s.refreshTTL)

	current, err := s.sessions.FindCurrentByAccount(ctx, accountID)
	if err != nil {
		return "", "", apperr.Infra(err)
	}
	if current != nil {
		if err := s.sessions.UpdateSecret(ctx, current.ID, current.SecretHash, secretHash, expiresAt); err != nil {
			return "", "", err
		}
		return current.ID, rawSecret, nil
	}

	sess := &sessiondomain.Session{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		SecretHash: secretHash,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", "", err
	}
	return sess.ID, rawSecret, nil
}

// Refresh exchanges a refresh credential for a new access/refresh pair,
// rotating the session's secret. The presented secret becomes permanently
// unusable on success; the expiry window slides to now + refresh TTL.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	sessionID, rawSecret, ok := security.DecodeRefreshToken(refreshToken)
	if !ok {
		return nil, ErrMalformedToken
	}

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	now := time.Now().UTC()
	if sess == nil || !sess.IsActive(now) {
		return nil, ErrSessionInvalid
	}
	if !s.hasher.Verify(rawSecret, sess.SecretHash) {
		// Strongest replay/theft signal: a structurally valid token whose
		// secret no longer matches. Extension point for account-wide
		// revocation; currently logged only.
		s.logger.Warn("refresh secret mismatch",
			zap.String("session_id", sess.ID),
			zap.String("account_id", sess.AccountID),
		)
		return nil, ErrSecretMismatch
	}

	newSecret, err := security.GenerateSecret(security.DefaultSecretBytes)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	newHash, err := s.hasher.Hash([]byte(newSecret))
	if err != nil {
		return nil, apperr.Infra(err)
	}
	if err := s.sessions.RotateSecret(ctx, sess.ID, sess.SecretHash, newHash, now.Add(s.refreshTTL)); err != nil {
		// A concurrent rotate, login, or logout won; a revocation that
		// landed after our read stays in force.
		return nil, err
	}

	accessToken, accessExp, err := s.tokens.IssueAccess(sess.AccountID, sess.ID)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	return &Credentials{
		AccessToken:     accessToken,
		AccessExpiresAt: accessExp,
		RefreshToken:    security.EncodeRefreshToken(sess.ID, newSecret),
	}, nil
}

// Logout revokes the session identified by the refresh credential.
// Idempotent by design: malformed tokens, unknown sessions, and mismatched
// secrets all return success so the response never reveals whether the token
// was live. Only infrastructure failures surface.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	sessionID, rawSecret, ok := security.DecodeRefreshToken(refreshToken)
	if !ok {
		return nil
	}
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return apperr.Infra(err)
	}
	if sess == nil || sess.RevokedAt != nil {
		return nil
	}
	if !s.hasher.Verify(rawSecret, sess.SecretHash) {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
		return apperr.Infra(err)
	}
	return nil
}

// Verify validates an access credential and resolves the identity behind it.
// Signature and expiry are checked first; the session record is then
// re-checked so a revoked session rejects even a still-valid-looking access
// token. The refresh secret is never consulted here.
func (s *AuthService) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	accountID, sessionID, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	if sess == nil || !sess.IsActive(time.Now().UTC()) {
		return nil, ErrSessionInvalid
	}
	if sess.AccountID != accountID {
		return nil, ErrInvalidAccessToken
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	if acct == nil {
		return nil, ErrAccountMissing
	}
	return &Identity{Account: acct, Session: sess}, nil
}
