package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"job-tracker-backend/internal/domain"
)

const jobsTable = `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
)`

const authorizationTable = `
CREATE TABLE IF NOT EXISTS "authorization" (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	password TEXT NOT NULL
)`

// jobColumns lists the columns later revisions added to jobs, with the
// definition used to add them to a table created by an older revision.
var jobColumns = []struct {
	name       string
	definition string
}{
	{"companyName", "TEXT NOT NULL DEFAULT ''"},
	{"applicationDate", "TEXT NOT NULL DEFAULT ''"},
	{"applicationStatus", "TEXT NOT NULL DEFAULT ''"},
	{"interviewDate", "TEXT"},
	{"skills", "TEXT"},
	{"contact_name", "TEXT DEFAULT ''"},
	{"contact_email", "TEXT DEFAULT ''"},
	{"contact_phone", "TEXT DEFAULT ''"},
}

type schemaManager struct {
	db           *sql.DB
	sharedSecret bool
}

// NewSchemaManager manages the jobs table plus the credential table of the
// configured auth mode: "authorization" when sharedSecret, "users" otherwise.
func NewSchemaManager(db *sql.DB, sharedSecret bool) domain.SchemaManager {
	return &schemaManager{db: db, sharedSecret: sharedSecret}
}

func (m *schemaManager) EnsureSchema(ctx context.Context) error {
	credentialTable := usersTable
	if m.sharedSecret {
		credentialTable = authorizationTable
	}

	for _, stmt := range []string{jobsTable, credentialTable} {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return m.upgradeJobs(ctx)
}

// upgradeJobs adds the columns missing from a jobs table created before they existed.
func (m *schemaManager) upgradeJobs(ctx context.Context) error {
	existing, err := m.columns(ctx, "jobs")
	if err != nil {
		return err
	}
	for _, col := range jobColumns {
		if existing[col.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE jobs ADD COLUMN %s %s", col.name, col.definition)
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
	}
	return nil
}

func (m *schemaManager) columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func (m *schemaManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}
