package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/pkg/response"
)

type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func RedisPing(rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

type HealthModule struct {
	Checks []HealthCheck
}

func NewHealthModule(checks ...HealthCheck) *HealthModule {
	return &HealthModule{Checks: checks}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.handle)
}

func (m *HealthModule) handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(m.Checks))
	for _, hc := range m.Checks {
		if err := hc.Check(ctx); err != nil {
			checks[hc.Name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[hc.Name] = "up"
	}
	if status != http.StatusOK {
		response.Error[any](c, status, "degraded", response.ErrorBody{Code: string(apperror.KindInternal), Details: checks})
		return
	}
	response.Success(c, status, checks, "ok", nil)
}
