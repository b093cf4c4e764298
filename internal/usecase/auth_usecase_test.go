package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/usecase"
	"job-tracker-backend/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memCredentials is an in-memory CredentialRepository.
type memCredentials struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.Credential
	shared *domain.Credential
	err    error
}

func newMemCredentials() *memCredentials {
	return &memCredentials{users: map[string]*domain.Credential{}}
}

func (r *memCredentials) Create(ctx context.Context, cred *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[cred.Email]; ok {
		return domain.ErrDuplicate
	}
	r.nextID++
	cred.ID = r.nextID
	stored := *cred
	r.users[cred.Email] = &stored
	return nil
}

func (r *memCredentials) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	cred, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *cred
	return &c, nil
}

func (r *memCredentials) GetShared(ctx context.Context) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shared == nil {
		return nil, domain.ErrNotFound
	}
	c := *r.shared
	return &c, nil
}

func (r *memCredentials) UpsertShared(ctx context.Context, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shared = &domain.Credential{ID: domain.SharedCredentialID, PasswordHash: passwordHash}
	return nil
}

func (r *memCredentials) SetPassword(ctx context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred := r.lookup(email)
	if cred == nil {
		return domain.ErrNotFound
	}
	cred.PasswordHash = passwordHash
	return nil
}

func (r *memCredentials) CompareAndSetPassword(ctx context.Context, email string, verify func(string) error, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred := r.lookup(email)
	if cred == nil {
		return domain.ErrNotFound
	}
	if err := verify(cred.PasswordHash); err != nil {
		return err
	}
	cred.PasswordHash = newHash
	return nil
}

func (r *memCredentials) lookup(email string) *domain.Credential {
	if email == "" {
		return r.shared
	}
	return r.users[email]
}

func newAuth(t *testing.T, repo domain.CredentialRepository, shared bool) (domain.AuthUsecase, *security.TokenManager) {
	t.Helper()
	tokens, err := security.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	uc := usecase.NewAuthUsecase(repo, security.NewPasswordHasher(bcrypt.MinCost), tokens, security.NopSecurityLogger(), shared)
	return uc, tokens
}

func TestPasswordFlow(t *testing.T) {
	repo := newMemCredentials()
	uc, tokens := newAuth(t, repo, false)
	ctx := context.Background()

	require.NoError(t, uc.Register(ctx, "a@b.com", "pw1"))

	session, err := uc.Login(ctx, "a@b.com", "pw1")
	require.NoError(t, err)
	claims, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, strconv.FormatInt(repo.users["a@b.com"].ID, 10), claims.Subject)

	_, err = uc.Login(ctx, "a@b.com", "wrong")
	assertAppError(t, err, http.StatusUnauthorized, usecase.MsgInvalidCredentials)

	require.NoError(t, uc.ChangePassword(ctx, "a@b.com", "pw1", "pw2"))

	_, err = uc.Login(ctx, "a@b.com", "pw1")
	assertAppError(t, err, http.StatusUnauthorized, usecase.MsgInvalidCredentials)
	_, err = uc.Login(ctx, "a@b.com", "pw2")
	assert.NoError(t, err)
}

func TestStoredHashIsNeverPlaintext(t *testing.T) {
	repo := newMemCredentials()
	uc, _ := newAuth(t, repo, false)

	for i, pw := range []string{"pw1", "a", "correct horse battery staple", "$2a$04$looks-like-a-hash"} {
		email := "user" + strconv.Itoa(i) + "@example.com"
		require.NoError(t, uc.Register(context.Background(), email, pw))
		assert.NotEqual(t, pw, repo.users[email].PasswordHash)
	}
}

func TestLoginUniformFailure(t *testing.T) {
	repo := newMemCredentials()
	uc, _ := newAuth(t, repo, false)
	ctx := context.Background()
	require.NoError(t, uc.Register(ctx, "a@b.com", "pw1"))

	_, unknown := uc.Login(ctx, "nobody@b.com", "pw1")
	_, wrong := uc.Login(ctx, "a@b.com", "nope")

	assertAppError(t, unknown, http.StatusUnauthorized, usecase.MsgInvalidCredentials)
	assertAppError(t, wrong, http.StatusUnauthorized, usecase.MsgInvalidCredentials)
}

func TestLoginMissingFields(t *testing.T) {
	uc, _ := newAuth(t, newMemCredentials(), false)

	_, err := uc.Login(context.Background(), "", "pw1")
	assertAppError(t, err, http.StatusBadRequest, "Email and password are required")

	_, err = uc.Login(context.Background(), "a@b.com", "")
	assertAppError(t, err, http.StatusBadRequest, "Password is required")
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	uc, _ := newAuth(t, newMemCredentials(), false)
	ctx := context.Background()
	require.NoError(t, uc.Register(ctx, " A@B.com", "pw1"))

	_, err := uc.Login(ctx, "a@b.COM", "pw1")
	assert.NoError(t, err)
}

func TestRegisterFailures(t *testing.T) {
	t.Run("duplicate email", func(t *testing.T) {
		uc, _ := newAuth(t, newMemCredentials(), false)
		require.NoError(t, uc.Register(context.Background(), "a@b.com", "pw1"))

		err := uc.Register(context.Background(), "a@b.com", "other")
		assertAppError(t, err, http.StatusInternalServerError, usecase.MsgAccountCreation)
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := newMemCredentials()
		repo.err = errors.New("disk full")
		uc, _ := newAuth(t, repo, false)

		err := uc.Register(context.Background(), "a@b.com", "pw1")
		assertAppError(t, err, http.StatusInternalServerError, usecase.MsgAccountCreation)
	})

	t.Run("missing fields", func(t *testing.T) {
		uc, _ := newAuth(t, newMemCredentials(), false)

		err := uc.Register(context.Background(), "", "pw1")
		assertAppError(t, err, http.StatusBadRequest, "Email and password are required")
	})

	t.Run("password too long", func(t *testing.T) {
		repo := newMemCredentials()
		uc, _ := newAuth(t, repo, false)

		err := uc.Register(context.Background(), "a@b.com", strings.Repeat("ü", 40))
		assertAppError(t, err, http.StatusBadRequest, usecase.MsgPasswordTooLong)
		assert.Empty(t, repo.users)
	})

	t.Run("shared secret mode", func(t *testing.T) {
		uc, _ := newAuth(t, newMemCredentials(), true)

		err := uc.Register(context.Background(), "a@b.com", "pw1")
		assertAppError(t, err, http.StatusBadRequest, usecase.MsgRegistrationDisabled)
	})
}

func TestSharedSecretMode(t *testing.T) {
	repo := newMemCredentials()
	uc, tokens := newAuth(t, repo, true)
	ctx := context.Background()
	assert.True(t, uc.SharedSecret())

	_, err := uc.Login(ctx, "", "secret")
	assertAppError(t, err, http.StatusUnauthorized, usecase.MsgInvalidCredentials)

	err = uc.ChangePassword(ctx, "", "secret", "next")
	assertAppError(t, err, http.StatusNotFound, usecase.MsgPasswordNotSet)

	require.NoError(t, uc.SeedCredential(ctx, "", "secret"))

	session, err := uc.Login(ctx, "", "secret")
	require.NoError(t, err)
	claims, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)

	// email is ignored for the shared row
	assert.NoError(t, uc.VerifyPassword(ctx, "whoever@b.com", "secret"))
	assertAppError(t, uc.VerifyPassword(ctx, "", "wrong"), http.StatusUnauthorized, usecase.MsgInvalidCredentials)

	require.NoError(t, uc.ChangePassword(ctx, "", "secret", "next"))
	assert.Error(t, uc.VerifyPassword(ctx, "", "secret"))
	assert.NoError(t, uc.VerifyPassword(ctx, "", "next"))
}

func TestChangePasswordFailures(t *testing.T) {
	repo := newMemCredentials()
	uc, _ := newAuth(t, repo, false)
	ctx := context.Background()
	require.NoError(t, uc.Register(ctx, "a@b.com", "pw1"))
	before := repo.users["a@b.com"].PasswordHash

	err := uc.ChangePassword(ctx, "a@b.com", "wrong", "pw2")
	assertAppError(t, err, http.StatusUnauthorized, usecase.MsgInvalidCredentials)
	assert.Equal(t, before, repo.users["a@b.com"].PasswordHash)

	err = uc.ChangePassword(ctx, "ghost@b.com", "pw1", "pw2")
	assertAppError(t, err, http.StatusUnauthorized, usecase.MsgInvalidCredentials)

	err = uc.ChangePassword(ctx, "a@b.com", "pw1", "")
	assertAppError(t, err, http.StatusBadRequest, "New password is required")

	err = uc.ChangePassword(ctx, "a@b.com", "", "pw2")
	assertAppError(t, err, http.StatusBadRequest, "Current password is required")

	err = uc.ChangePassword(ctx, "a@b.com", "pw1", strings.Repeat("x", 80))
	assertAppError(t, err, http.StatusBadRequest, usecase.MsgPasswordTooLong)
	assert.Equal(t, before, repo.users["a@b.com"].PasswordHash)
}

func TestSeedCredentialPerUserResets(t *testing.T) {
	repo := newMemCredentials()
	uc, _ := newAuth(t, repo, false)
	ctx := context.Background()

	require.NoError(t, uc.SeedCredential(ctx, "admin@b.com", "first"))
	require.NoError(t, uc.SeedCredential(ctx, "admin@b.com", "second"))

	assert.NoError(t, uc.VerifyPassword(ctx, "admin@b.com", "second"))
	assert.Error(t, uc.VerifyPassword(ctx, "admin@b.com", "first"))

	err := uc.SeedCredential(ctx, "", "pw")
	assertAppError(t, err, http.StatusBadRequest, "Email is required")
}
