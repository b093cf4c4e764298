package v1

import (
	"net/http"
	"time"

	"job-tracker-backend/config"
	"job-tracker-backend/internal/delivery/http/middleware"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/usecase"
	"job-tracker-backend/pkg/security"
	"job-tracker-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC      domain.AuthUsecase
	JobUC       domain.JobUsecase
	HealthUC    usecase.HealthUsecase
	Tokens      *security.TokenManager
	SecLog      *security.SecurityLogger
	RateLimiter *middleware.RateLimiter
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	api := r.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware(middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))
	}

	// Health Check
	api.GET("/health", func(c *gin.Context) {
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	// Swagger
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Credential routes
	authRoutes := api.Group("")
	if deps.RateLimiter != nil {
		authRoutes.Use(deps.RateLimiter.Middleware(middleware.AuthRateLimitConfig(deps.Config.RateLimitAuthThreshold, window)))
	}
	NewAuthHandler(authRoutes, deps.AuthUC)

	// Job routes, protected unless REQUIRE_AUTH=false
	protected := api.Group("")
	if deps.Config.RequireAuth {
		protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.SecLog))
	}
	NewJobHandler(protected.Group("/jobs"), protected.Group("/export"), deps.JobUC)

	return r
}
