package store

import (
	"context"
	"path/filepath"
	"testing"

	"job-tracker-backend/config"
	"job-tracker-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "jobs.db"),
		AuthMode: config.AuthModePerUser,
	}
	ctx := context.Background()

	s, err := Open(ctx, cfg)
	require.NoError(t, err)

	job := &domain.JobApplication{Title: "Engineer", CompanyName: "Acme", ApplicationDate: "2025-02-01", ApplicationStatus: "Submitted", Skills: []string{}}
	require.NoError(t, s.Jobs.Create(ctx, job))
	s.Close()

	// data survives a reopen
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	jobs, err := s.Jobs.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Engineer", jobs[0].Title)
	assert.NoError(t, s.Schema.Ping(ctx))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DBDriver: "mysql"})

	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DB_DRIVER", cfgErr.Key)
}
