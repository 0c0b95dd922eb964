package v1

import (
	"log/slog"
	"net/http"
	"time"

	"portfolio-backend/config"
	"portfolio-backend/internal/delivery/http/middleware"
	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/apperror"
	"portfolio-backend/pkg/metrics"
	"portfolio-backend/pkg/security"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type RouterDeps struct {
	ContactUC   domain.ContactUsecase
	HealthUC    domain.HealthUsecase
	Redis       *goredis.Client // nil selects the in-memory rate limiter
	Logger      *slog.Logger
	AccessLog   *zap.Logger
	SecurityLog *security.SecurityLogger
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.AccessLog == nil {
		deps.AccessLog = zap.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins())) // CORS must be first!
	r.Use(ginzap.Ginzap(deps.AccessLog, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(deps.AccessLog, true))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler(deps.Logger))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Public routes
	contactLimiter := middleware.NewRateLimiter(
		middleware.ContactRateLimitConfig(deps.Config.ContactRateLimit, deps.Config.RateLimitWindow(), deps.Config.ContactDailyLimit),
		deps.Redis,
		deps.SecurityLog,
	)
	NewContactHandler(v1, deps.ContactUC,
		contactLimiter.Middleware(),
		middleware.BodyLimit(deps.Config.MaxBodyBytes),
	)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperror.NotFound("Not found"))
	})

	return r
}
