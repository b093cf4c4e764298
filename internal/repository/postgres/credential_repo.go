package postgres

import (
	"context"
	"errors"

	"job-tracker-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

type credentialRepo struct {
	db *pgxpool.Pool
}

func NewCredentialRepository(db *pgxpool.Pool) domain.CredentialRepository {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) Create(ctx context.Context, cred *domain.Credential) error {
	query := `INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id`
	err := r.db.QueryRow(ctx, query, cred.Email, cred.PasswordHash).Scan(&cred.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *credentialRepo) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var cred domain.Credential
	err := r.db.QueryRow(ctx, `SELECT id, email, password FROM users WHERE email = $1`, email).
		Scan(&cred.ID, &cred.Email, &cred.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) GetShared(ctx context.Context) (*domain.Credential, error) {
	var cred domain.Credential
	err := r.db.QueryRow(ctx, `SELECT id, password FROM "authorization" WHERE id = $1`, domain.SharedCredentialID).
		Scan(&cred.ID, &cred.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) UpsertShared(ctx context.Context, passwordHash string) error {
	query := `INSERT INTO "authorization" (id, password) VALUES ($1, $2)
              ON CONFLICT (id) DO UPDATE SET password = EXCLUDED.password`
	_, err := r.db.Exec(ctx, query, domain.SharedCredentialID, passwordHash)
	return err
}

func (r *credentialRepo) SetPassword(ctx context.Context, email, passwordHash string) error {
	query, args := updatePasswordQuery(email, passwordHash)
	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *credentialRepo) CompareAndSetPassword(ctx context.Context, email string, verify func(currentHash string) error, newHash string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Row lock holds concurrent changes of the same credential until commit
	var currentHash string
	if email == "" {
		err = tx.QueryRow(ctx, `SELECT password FROM "authorization" WHERE id = $1 FOR UPDATE`, domain.SharedCredentialID).Scan(&currentHash)
	} else {
		err = tx.QueryRow(ctx, `SELECT password FROM users WHERE email = $1 FOR UPDATE`, email).Scan(&currentHash)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := verify(currentHash); err != nil {
		return err
	}

	query, args := updatePasswordQuery(email, newHash)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func updatePasswordQuery(email, passwordHash string) (string, []any) {
	if email == "" {
		return `UPDATE "authorization" SET password = $1 WHERE id = $2`, []any{passwordHash, domain.SharedCredentialID}
	}
	return `UPDATE users SET password = $1 WHERE email = $2`, []any{passwordHash, email}
}
