package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/common/validation"
	"golang.org/x/crypto/bcrypt"
)

const (
	messageLoginSuccess          = "Login successful."
	messageLoginSuccessTemporary = "Login successful. Please change your temporary password."

	reasonAccountLocked   = "account_locked"
	reasonUnknownUser     = "unknown_or_inactive_user"
	reasonInvalidPassword = "invalid_password"
	reasonInternal        = "internal_error"
)

// Service is the main auth service with dependencies
type Service struct {
	repo       Repository
	tokens     TokenService
	tracker    AttemptTracker
	audit      AuditRecorder
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
	dummyHash  []byte
}

// NewService creates a new auth service. A nil tracker disables lockout.
func NewService(repo Repository, tokens TokenService, tracker AttemptTracker, audit AuditRecorder, bcryptCost int, logger *slog.Logger) *Service {
	if tracker == nil {
		tracker = NopAttemptTracker{}
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	// compared against when the employee number is unknown so both failure paths cost one bcrypt round
	dummy, err := bcrypt.GenerateFromPassword([]byte("attendance-dummy-password"), bcryptCost)
	if err != nil {
		logger.Error("failed to prepare dummy hash", "error", err)
	}

	return &Service{
		repo:       repo,
		tokens:     tokens,
		tracker:    tracker,
		audit:      audit,
		logger:     logger,
		bcryptCost: bcryptCost,
		now:        time.Now,
		dummyHash:  dummy,
	}
}

// Login authenticates an employee number and password and issues a bearer token.
// Unknown users and wrong passwords return the same internal.ErrInvalidCredentials value.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	until, locked, err := s.tracker.Locked(ctx, in.EmployeeNumber)
	if err != nil {
		s.audit.LoginFailed(ctx, in.EmployeeNumber, in.IPAddress, in.UserAgent, reasonInternal)
		return nil, internal.NewInternalError("failed to check account lock", err)
	}
	if locked {
		s.audit.LoginFailed(ctx, in.EmployeeNumber, in.IPAddress, in.UserAgent, reasonAccountLocked)
		return nil, internal.NewAccountLockedError(until)
	}

	acct, err := s.repo.FindActiveByEmployeeNumber(ctx, in.EmployeeNumber)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
			return nil, s.credentialFailure(ctx, in, reasonUnknownUser)
		}
		s.audit.LoginFailed(ctx, in.EmployeeNumber, in.IPAddress, in.UserAgent, reasonInternal)
		return nil, internal.NewInternalError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(in.Password)); err != nil {
		return nil, s.credentialFailure(ctx, in, reasonInvalidPassword)
	}

	token, err := s.tokens.Issue(Claims{
		UserID:         acct.ID,
		EmployeeNumber: acct.EmployeeNumber,
		Email:          acct.Email,
		Roles:          acct.Roles,
	})
	if err != nil {
		s.audit.LoginFailed(ctx, in.EmployeeNumber, in.IPAddress, in.UserAgent, reasonInternal)
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, acct.ID, now); err != nil {
		s.audit.LoginFailed(ctx, in.EmployeeNumber, in.IPAddress, in.UserAgent, reasonInternal)
		return nil, internal.NewInternalError("failed to record login", err)
	}

	if err := s.tracker.Reset(ctx, in.EmployeeNumber); err != nil {
		s.logger.WarnContext(ctx, "failed to reset login attempts", "employee_number", in.EmployeeNumber, "error", err)
	}

	profile := acct.Profile
	profile.LastLoginAt = &now
	s.audit.LoginSucceeded(ctx, &profile, in.IPAddress, in.UserAgent)

	message := messageLoginSuccess
	if profile.IsPasswordTemporary {
		message = messageLoginSuccessTemporary
	}

	return &LoginResult{
		Token:   token,
		User:    &profile,
		Message: message,
	}, nil
}

func (s *Service) credentialFailure(ctx context.Context, in LoginInput, reason string) error {
	s.audit.LoginFailed(ctx, in.EmployeeNumber, in.IPAddress, in.UserAgent, reason)

	if until, locked, err := s.tracker.RegisterFailure(ctx, in.EmployeeNumber); err != nil {
		s.logger.ErrorContext(ctx, "failed to register login failure", "employee_number", in.EmployeeNumber, "error", err)
	} else if locked {
		s.logger.WarnContext(ctx, "account locked after repeated failures", "employee_number", in.EmployeeNumber, "locked_until", until)
	}

	return internal.ErrInvalidCredentials
}

// VerifyToken validates a bearer token.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

// LoadProfile reloads the current state of an active user. Deactivated users yield internal.ErrUserNotFound.
func (s *Service) LoadProfile(ctx context.Context, userID int64) (*Profile, error) {
	acct, err := s.repo.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to load user profile", err)
	}
	profile := acct.Profile
	return &profile, nil
}

// ChangePassword replaces the password after verifying the current one and clears the temporary flag.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	v := validation.NewValidator()
	v.Field("newPassword", newPassword).Required().Password()
	if err := v.Validate(); err != nil {
		return err
	}

	acct, err := s.repo.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return internal.ErrUserNotFound
		}
		return internal.NewInternalError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(currentPassword)); err != nil {
		return internal.NewValidationFieldError("currentPassword", "current password is incorrect", internal.ErrCodeInvalidCredentials)
	}
	if currentPassword == newPassword {
		return internal.NewValidationFieldError("newPassword", "new password must differ from the current password", internal.ErrCodeWeakPassword)
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, hash, false); err != nil {
		return internal.NewInternalError("failed to update password", err)
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
