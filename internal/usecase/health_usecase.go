package usecase

import (
	"context"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

type healthUsecase struct {
	providerName    string
	emailConfigured bool
	redis           *goredis.Client
}

// NewHealthUsecase reports email provider readiness and, when a client is
// given, Redis connectivity.
func NewHealthUsecase(providerName string, emailConfigured bool, redisClient *goredis.Client) domain.HealthUsecase {
	return &healthUsecase{
		providerName:    providerName,
		emailConfigured: emailConfigured,
		redis:           redisClient,
	}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{
		"status":         "ok",
		"email_provider": u.providerName,
		"email":          "configured",
		"redis":          "disabled",
	}
	if !u.emailConfigured {
		status["email"] = "not_configured"
		status["status"] = "degraded"
	}
	if u.redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := redis.HealthCheck(pingCtx, u.redis); err != nil {
			status["redis"] = "unavailable"
			status["status"] = "degraded"
		} else {
			status["redis"] = "ok"
		}
	}
	return status
}
