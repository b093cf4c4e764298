package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"job-tracker-backend/internal/domain"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type credentialRepo struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) domain.CredentialRepository {
	return &credentialRepo{db: db}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) {
		// Extended codes (SQLITE_CONSTRAINT_UNIQUE) share the primary code in the low byte.
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

func (r *credentialRepo) Create(ctx context.Context, cred *domain.Credential) error {
	result, err := r.db.ExecContext(ctx, `INSERT INTO users (email, password) VALUES (?, ?)`, cred.Email, cred.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	cred.ID = id
	return nil
}

func (r *credentialRepo) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var cred domain.Credential
	err := r.db.QueryRowContext(ctx, `SELECT id, email, password FROM users WHERE email = ?`, email).
		Scan(&cred.ID, &cred.Email, &cred.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) GetShared(ctx context.Context) (*domain.Credential, error) {
	var cred domain.Credential
	err := r.db.QueryRowContext(ctx, `SELECT id, password FROM "authorization" WHERE id = ?`, domain.SharedCredentialID).
		Scan(&cred.ID, &cred.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) UpsertShared(ctx context.Context, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO "authorization" (id, password) VALUES (?, ?)`,
		domain.SharedCredentialID, passwordHash)
	return err
}

func (r *credentialRepo) SetPassword(ctx context.Context, email, passwordHash string) error {
	query, args := updatePasswordQuery(email, passwordHash)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *credentialRepo) CompareAndSetPassword(ctx context.Context, email string, verify func(currentHash string) error, newHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var currentHash string
	if email == "" {
		err = tx.QueryRowContext(ctx, `SELECT password FROM "authorization" WHERE id = ?`, domain.SharedCredentialID).Scan(&currentHash)
	} else {
		err = tx.QueryRowContext(ctx, `SELECT password FROM users WHERE email = ?`, email).Scan(&currentHash)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := verify(currentHash); err != nil {
		return err
	}

	query, args := updatePasswordQuery(email, newHash)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return tx.Commit()
}

func updatePasswordQuery(email, passwordHash string) (string, []any) {
	if email == "" {
		return `UPDATE "authorization" SET password = ? WHERE id = ?`, []any{passwordHash, domain.SharedCredentialID}
	}
	return `UPDATE users SET password = ? WHERE email = ?`, []any{passwordHash, email}
}
