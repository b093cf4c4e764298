package store

import (
	"context"
	"fmt"

	"job-tracker-backend/config"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/repository/postgres"
	"job-tracker-backend/internal/repository/sqlite"
	"job-tracker-backend/pkg/database"
)

// Store bundles the repositories of the configured engine.
type Store struct {
	Jobs        domain.JobRepository
	Credentials domain.CredentialRepository
	Schema      domain.SchemaManager
	close       func()
}

// Open connects to the engine named by cfg.DBDriver and ensures the schema.
// A schema failure closes the connection and is returned to the caller.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	var s *Store

	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.NewPostgresConnection(cfg.DBUrl)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s = &Store{
			Jobs:        postgres.NewJobRepository(pool),
			Credentials: postgres.NewCredentialRepository(pool),
			Schema:      postgres.NewSchemaManager(pool, cfg.SharedSecret()),
			close:       pool.Close,
		}
	case config.DriverSQLite:
		db, err := database.NewSQLiteConnection(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.DBPath, err)
		}
		s = &Store{
			Jobs:        sqlite.NewJobRepository(db),
			Credentials: sqlite.NewCredentialRepository(db),
			Schema:      sqlite.NewSchemaManager(db, cfg.SharedSecret()),
			close:       func() { _ = db.Close() },
		}
	default:
		return nil, &config.Error{Key: "DB_DRIVER", Value: cfg.DBDriver}
	}

	if err := s.Schema.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
