package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/repository/postgres"
	"job-tracker-backend/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to TEST_DATABASE_URL and starts from empty tables.
// The tests are skipped when no database is configured.
func newTestPool(t *testing.T, sharedSecret bool) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := database.NewPostgresConnection(url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ctx := context.Background()
	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS jobs, users, "authorization"`)
	require.NoError(t, err)
	require.NoError(t, postgres.NewSchemaManager(pool, sharedSecret).EnsureSchema(ctx))
	return pool
}

func TestPostgresSchemaIsIdempotent(t *testing.T) {
	pool := newTestPool(t, false)
	schema := postgres.NewSchemaManager(pool, false)

	require.NoError(t, schema.EnsureSchema(context.Background()))
	assert.NoError(t, schema.Ping(context.Background()))
}

func TestPostgresJobRepositoryCRUD(t *testing.T) {
	repo := postgres.NewJobRepository(newTestPool(t, false))
	ctx := context.Background()

	interview := "2025-01-12"
	job := &domain.JobApplication{
		Title:             "Data Scientist",
		CompanyName:       "Meta",
		ApplicationDate:   "2025-01-03",
		ApplicationStatus: domain.StatusInReview,
		InterviewDate:     &interview,
		Skills:            []string{"Python", "Machine Learning", "SQL"},
	}
	require.NoError(t, repo.Create(ctx, job))
	assert.NotZero(t, job.ID)

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job, got)

	job.Skills = nil
	require.NoError(t, repo.Update(ctx, job))
	got, err = repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Skills)

	jobs, err := repo.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	require.NoError(t, repo.Delete(ctx, job.ID))
	assert.ErrorIs(t, repo.Delete(ctx, job.ID), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, job), domain.ErrNotFound)
}

func TestPostgresCredentialRepository(t *testing.T) {
	repo := postgres.NewCredentialRepository(newTestPool(t, false))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Credential{Email: "a@b.com", PasswordHash: "old"}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.Credential{Email: "a@b.com", PasswordHash: "x"}), domain.ErrDuplicate)

	errMismatch := errors.New("mismatch")
	err := repo.CompareAndSetPassword(ctx, "a@b.com", func(current string) error {
		if current != "old" {
			return errMismatch
		}
		return nil
	}, "new")
	require.NoError(t, err)

	got, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	_, err = repo.GetByEmail(ctx, "nobody@b.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresSharedCredential(t *testing.T) {
	repo := postgres.NewCredentialRepository(newTestPool(t, true))
	ctx := context.Background()

	require.NoError(t, repo.UpsertShared(ctx, "one"))
	require.NoError(t, repo.UpsertShared(ctx, "two"))
	got, err := repo.GetShared(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", got.PasswordHash)

	require.NoError(t, repo.SetPassword(ctx, "", "three"))
	got, err = repo.GetShared(ctx)
	require.NoError(t, err)
	assert.Equal(t, "three", got.PasswordHash)
}
