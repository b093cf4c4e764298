package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/metrics"
	"job-tracker-backend/pkg/security"
)

const (
	MsgInvalidCredentials   = "Invalid credentials"
	MsgAccountCreation      = "Account creation failed"
	MsgRegistrationDisabled = "Registration is not available"
	MsgPasswordNotSet       = "Password not set"
	MsgPasswordTooLong      = "Password must be at most 72 bytes"
)

type authUsecase struct {
	credRepo     domain.CredentialRepository
	hasher       *security.PasswordHasher
	tokens       *security.TokenManager
	secLog       *security.SecurityLogger
	sharedSecret bool
}

func NewAuthUsecase(
	credRepo domain.CredentialRepository,
	hasher *security.PasswordHasher,
	tokens *security.TokenManager,
	secLog *security.SecurityLogger,
	sharedSecret bool,
) domain.AuthUsecase {
	if secLog == nil {
		secLog = security.NopSecurityLogger()
	}
	return &authUsecase{
		credRepo:     credRepo,
		hasher:       hasher,
		tokens:       tokens,
		secLog:       secLog,
		sharedSecret: sharedSecret,
	}
}

func (u *authUsecase) SharedSecret() bool {
	return u.sharedSecret
}

func (u *authUsecase) Register(ctx context.Context, email, password string) error {
	if u.sharedSecret {
		return apperror.BadRequest(MsgRegistrationDisabled)
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return apperror.BadRequest("Email and password are required")
	}

	hash, err := u.hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return apperror.BadRequest(MsgPasswordTooLong)
	}
	if err != nil {
		u.secLog.LogCredentialEvent(ctx, security.EventUserCreateFailed, email, "hash_failed")
		return apperror.New(http.StatusInternalServerError, MsgAccountCreation, err)
	}

	// Duplicate email and storage failures look the same to the client
	if err := u.credRepo.Create(ctx, &domain.Credential{Email: email, PasswordHash: hash}); err != nil {
		reason := "storage_error"
		if errors.Is(err, domain.ErrDuplicate) {
			reason = "duplicate_email"
		}
		u.secLog.LogCredentialEvent(ctx, security.EventUserCreateFailed, email, reason)
		return apperror.New(http.StatusInternalServerError, MsgAccountCreation, err)
	}

	u.secLog.LogCredentialEvent(ctx, security.EventUserCreated, email, "")
	return nil
}

func (u *authUsecase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	cred, err := u.authenticate(ctx, email, password)
	metrics.ObserveAuth("login", err)
	if err != nil {
		u.secLog.LogCredentialEvent(ctx, security.EventLoginFailed, u.subject(email), failureReason(err))
		return nil, err
	}

	token, expiresAt, err := u.tokens.Issue(strconv.FormatInt(cred.ID, 10), cred.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u.secLog.LogCredentialEvent(ctx, security.EventLoginSuccess, cred.Email, "")
	return &domain.Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (u *authUsecase) VerifyPassword(ctx context.Context, email, password string) error {
	_, err := u.authenticate(ctx, email, password)
	metrics.ObserveAuth("verify_password", err)
	if err != nil {
		u.secLog.LogCredentialEvent(ctx, security.EventPasswordVerifyFailed, u.subject(email), failureReason(err))
		return err
	}
	u.secLog.LogCredentialEvent(ctx, security.EventPasswordVerified, u.subject(email), "")
	return nil
}

func (u *authUsecase) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	email = u.subject(email)
	if !u.sharedSecret && email == "" {
		return apperror.BadRequest("Email and password are required")
	}
	if currentPassword == "" {
		return apperror.BadRequest("Current password is required")
	}
	if newPassword == "" {
		return apperror.BadRequest("New password is required")
	}

	newHash, err := u.hashPassword(newPassword)
	if err != nil {
		return err
	}

	err = u.credRepo.CompareAndSetPassword(ctx, email, func(currentHash string) error {
		return u.hasher.Compare(currentHash, currentPassword)
	}, newHash)
	metrics.ObserveAuth("change_password", err)

	switch {
	case err == nil:
		u.secLog.LogCredentialEvent(ctx, security.EventPasswordChange, email, "")
		return nil
	case errors.Is(err, domain.ErrNotFound):
		u.secLog.LogCredentialEvent(ctx, security.EventPasswordChangeFailed, email, "not_found")
		if u.sharedSecret {
			return apperror.NotFound(MsgPasswordNotSet)
		}
		return apperror.Unauthorized(MsgInvalidCredentials)
	case errors.Is(err, security.ErrPasswordMismatch):
		u.secLog.LogCredentialEvent(ctx, security.EventPasswordChangeFailed, email, "invalid_credentials")
		return apperror.Unauthorized(MsgInvalidCredentials)
	default:
		u.secLog.LogCredentialEvent(ctx, security.EventPasswordChangeFailed, email, "storage_error")
		return apperror.Internal(err)
	}
}

// SeedCredential stores password as the shared secret, or creates (or resets) the user email.
func (u *authUsecase) SeedCredential(ctx context.Context, email, password string) error {
	if password == "" {
		return apperror.BadRequest("Password is required")
	}
	hash, err := u.hashPassword(password)
	if err != nil {
		return err
	}

	if u.sharedSecret {
		if err := u.credRepo.UpsertShared(ctx, hash); err != nil {
			return apperror.Internal(err)
		}
		return nil
	}

	email = normalizeEmail(email)
	if email == "" {
		return apperror.BadRequest("Email is required")
	}
	err = u.credRepo.Create(ctx, &domain.Credential{Email: email, PasswordHash: hash})
	if errors.Is(err, domain.ErrDuplicate) {
		err = u.credRepo.SetPassword(ctx, email, hash)
	}
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// authenticate looks up the active credential and compares password against it.
// Unknown users and wrong passwords produce the same error.
func (u *authUsecase) authenticate(ctx context.Context, email, password string) (*domain.Credential, error) {
	email = u.subject(email)
	if err := u.checkInput(email, password); err != nil {
		return nil, err
	}

	var (
		cred *domain.Credential
		err  error
	)
	if u.sharedSecret {
		cred, err = u.credRepo.GetShared(ctx)
	} else {
		cred, err = u.credRepo.GetByEmail(ctx, email)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.New(http.StatusUnauthorized, MsgInvalidCredentials, err)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := u.hasher.Compare(cred.PasswordHash, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return nil, apperror.New(http.StatusUnauthorized, MsgInvalidCredentials, err)
		}
		return nil, apperror.Internal(err)
	}
	return cred, nil
}

// hashPassword reports an over-long password as a client error.
func (u *authUsecase) hashPassword(password string) (string, error) {
	hash, err := u.hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordTooLong) {
		return "", apperror.BadRequest(MsgPasswordTooLong)
	}
	if err != nil {
		return "", apperror.Internal(err)
	}
	return hash, nil
}

func (u *authUsecase) checkInput(email, password string) error {
	if !u.sharedSecret && email == "" {
		return apperror.BadRequest("Email and password are required")
	}
	if password == "" {
		return apperror.BadRequest("Password is required")
	}
	return nil
}

// subject is the credential identifier: the normalized email, or empty for the shared row.
func (u *authUsecase) subject(email string) string {
	if u.sharedSecret {
		return ""
	}
	return normalizeEmail(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func failureReason(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case http.StatusUnauthorized:
			return "invalid_credentials"
		case http.StatusBadRequest:
			return "missing_fields"
		}
	}
	return "storage_error"
}
