// Package service implements user management: CRUD over accounts plus the
// email verification flow.
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-management-api/internal/account/domain"
	"user-management-api/internal/apperr"
	"user-management-api/internal/mailer"
	"user-management-api/internal/security"
)

var (
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "user not found")
	ErrInvalidVerifyToken = apperr.New(apperr.KindValidation, "invalid or expired verification token")
)

const minPasswordLength = 6

// AccountRepo is the account persistence needed by the user service.
type AccountRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, a *domain.Account) error
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}

// CreateInput carries the fields for a new user. Role defaults to user and
// Status to pending when empty.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role
	Status    domain.Status
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Role      *domain.Role
	Status    *domain.Status
}

// UserService implements user management on top of the account repository.
type UserService struct {
	accounts      AccountRepo
	hasher        *security.Hasher
	tokens        *security.TokenProvider
	mail          mailer.Mailer
	verifyBaseURL string
	logger        *zap.Logger
}

// NewUserService returns a UserService with the given dependencies.
func NewUserService(
	accounts AccountRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	mail mailer.Mailer,
	verifyBaseURL string,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		accounts:      accounts,
		hasher:        hasher,
		tokens:        tokens,
		mail:          mail,
		verifyBaseURL: verifyBaseURL,
		logger:        logger,
	}
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]*domain.Account, error) {
	out, err := s.accounts.List(ctx)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	return out, nil
}

// GetByID returns the user or a not-found error.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.New(apperr.KindValidation, "id required")
	}
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	if a == nil {
		return nil, ErrUserNotFound
	}
	return a, nil
}

// Create validates the input, hashes the password, persists the account and,
// for pending accounts, sends the verification email. Email delivery failure
// does not fail the create.
func (s *UserService) Create(ctx context.Context, in CreateInput) (*domain.Account, error) {
	email := domain.NormalizeEmail(in.Email)
	if len(email) <= 3 || !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.KindValidation, "invalid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.New(apperr.KindValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if in.Role != "" && !domain.IsValidRole(in.Role) {
		return nil, apperr.New(apperr.KindValidation, "invalid role")
	}
	if in.Status != "" && !domain.IsValidStatus(in.Status) {
		return nil, apperr.New(apperr.KindValidation, "invalid status")
	}

	hash, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, apperr.Infra(err)
	}
	now := time.Now().UTC()
	a := &domain.Account{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         in.Role,
		Status:       in.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Validate(); err != nil {
		return nil, apperr.New(apperr.KindValidation, err.Error())
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, apperr.Infra(err)
	}

	if a.Status == domain.StatusPending {
		s.sendVerification(ctx, a)
	}
	return a, nil
}

// sendVerification issues a purpose-bound token and emails the verify link.
// Best effort: failures are logged and the account stays pending until the
// user requests a new link or an admin activates them.
func (s *UserService) sendVerification(ctx context.Context, a *domain.Account) {
	token, err := s.tokens.IssueEmailVerification(a.ID)
	if err != nil {
		s.logger.Error("issue verification token", zap.String("account_id", a.ID), zap.Error(err))
		return
	}
	link := s.verifyBaseURL + "?token=" + url.QueryEscape(token)
	if err := s.mail.SendVerificationEmail(ctx, a.Email, link); err != nil {
		s.logger.Error("send verification email", zap.String("account_id", a.ID), zap.Error(err))
	}
}

// Update applies a partial update. Email uniqueness is enforced by the
// repository's unique index.
func (s *UserService) Update(ctx context.Context, id string, in UpdateInput) (*domain.Account, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if len(email) <= 3 || !strings.Contains(email, "@") {
			return nil, apperr.New(apperr.KindValidation, "invalid email")
		}
		a.Email = email
	}
	if in.FirstName != nil {
		a.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		a.LastName = *in.LastName
	}
	if in.Role != nil {
		if !domain.IsValidRole(*in.Role) {
			return nil, apperr.New(apperr.KindValidation, "invalid role")
		}
		a.Role = *in.Role
	}
	if in.Status != nil {
		if !domain.IsValidStatus(*in.Status) {
			return nil, apperr.New(apperr.KindValidation, "invalid status")
		}
		a.Status = *in.Status
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, apperr.New(apperr.KindValidation,
				fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		}
		hash, err := s.hasher.Hash([]byte(*in.Password))
		if err != nil {
			return nil, apperr.Infra(err)
		}
		a.PasswordHash = hash
	}
	a.UpdatedAt = time.Now().UTC()

	if err := s.accounts.Update(ctx, a); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, apperr.Infra(err)
	}
	return a, nil
}

// Delete removes the user. Their sessions go with them via the schema's
// cascade.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return apperr.Infra(err)
	}
	return nil
}

// VerifyEmail redeems a verification token, moving a pending account to
// active. Already-active accounts verify idempotently; disabled accounts are
// not reactivated.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*domain.Account, error) {
	accountID, err := s.tokens.ValidateEmailVerification(token)
	if err != nil {
		return nil, ErrInvalidVerifyToken
	}
	a, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	if a == nil {
		return nil, ErrUserNotFound
	}
	switch a.Status {
	case domain.StatusActive:
		return a, nil
	case domain.StatusDisabled:
		return nil, apperr.New(apperr.KindForbidden, "account is disabled")
	}
	updated, err := s.accounts.UpdateStatus(ctx, accountID, domain.StatusActive)
	if err != nil {
		return nil, apperr.Infra(err)
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}
