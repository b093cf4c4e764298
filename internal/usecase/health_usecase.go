package usecase

import (
	"context"
	"time"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/logger"
)

// Pinger is any dependency whose liveness can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthUsecase interface {
	// Check reports component status and whether every required component is up.
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	schema domain.SchemaManager
	cache  Pinger
}

// NewHealthUsecase probes the database and, when cache is non-nil, Redis.
// Redis is optional: its failure is reported but does not mark the service down.
func NewHealthUsecase(schema domain.SchemaManager, cache Pinger) HealthUsecase {
	return &healthUsecase{schema: schema, cache: cache}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":   "ok",
		"database": "ok",
	}
	healthy := true

	if err := u.schema.Ping(ctx); err != nil {
		logger.Log.Error("health check: database ping failed", "error", err)
		status["status"] = "degraded"
		status["database"] = "unavailable"
		healthy = false
	}

	if u.cache != nil {
		status["cache"] = "ok"
		if err := u.cache.Ping(ctx); err != nil {
			logger.Log.Warn("health check: cache ping failed", "error", err)
			status["cache"] = "unavailable"
		}
	}

	return status, healthy
}
