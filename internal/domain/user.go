package domain

import (
	"context"
	"time"
)

// SharedCredentialID is the fixed row id of the application-wide password.
const SharedCredentialID int64 = 1

// Credential is a stored password hash. Email is empty for the shared secret.
type Credential struct {
	ID           int64  `json:"id"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
}

type CredentialRepository interface {
	// Create inserts a per-user credential and returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, cred *Credential) error
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	GetShared(ctx context.Context) (*Credential, error)
	UpsertShared(ctx context.Context, passwordHash string) error
	// SetPassword replaces the hash for email, or the shared row when email is empty.
	SetPassword(ctx context.Context, email, passwordHash string) error
	// CompareAndSetPassword runs verify against the stored hash and, if it
	// succeeds, stores newHash in the same transaction.
	CompareAndSetPassword(ctx context.Context, email string, verify func(currentHash string) error, newHash string) error
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthUsecase interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*Session, error)
	VerifyPassword(ctx context.Context, email, password string) error
	ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error
	SeedCredential(ctx context.Context, email, password string) error
	SharedSecret() bool
}
