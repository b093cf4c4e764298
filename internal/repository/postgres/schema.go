package postgres

import (
	"context"
	"fmt"

	"job-tracker-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Column names are left unquoted, so PostgreSQL folds companyName and friends
// to lower case; every query below relies on the same folding.
const jobsTable = `
CREATE TABLE IF NOT EXISTS jobs (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	companyName TEXT NOT NULL,
	applicationDate TEXT NOT NULL,
	applicationStatus TEXT NOT NULL,
	interviewDate TEXT,
	skills TEXT,
	contact_name TEXT DEFAULT '',
	contact_email TEXT DEFAULT '',
	contact_phone TEXT DEFAULT ''
)`

const usersTable = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
)`

const authorizationTable = `
CREATE TABLE IF NOT EXISTS "authorization" (
	id BIGINT PRIMARY KEY CHECK (id = 1),
	password TEXT NOT NULL
)`

// Brings jobs tables created by earlier revisions up to the current column set.
var jobsUpgrades = []string{
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS companyName TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS applicationDate TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS applicationStatus TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS interviewDate TEXT`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS skills TEXT`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS contact_name TEXT DEFAULT ''`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS contact_email TEXT DEFAULT ''`,
	`ALTER TABLE jobs ADD COLUMN IF NOT EXISTS contact_phone TEXT DEFAULT ''`,
}

type schemaManager struct {
	db           *pgxpool.Pool
	sharedSecret bool
}

func NewSchemaManager(db *pgxpool.Pool, sharedSecret bool) domain.SchemaManager {
	return &schemaManager{db: db, sharedSecret: sharedSecret}
}

func (m *schemaManager) EnsureSchema(ctx context.Context) error {
	credentialTable := usersTable
	if m.sharedSecret {
		credentialTable = authorizationTable
	}

	stmts := append([]string{jobsTable, credentialTable}, jobsUpgrades...)
	for _, stmt := range stmts {
		if _, err := m.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (m *schemaManager) Ping(ctx context.Context) error {
	return m.db.Ping(ctx)
}
