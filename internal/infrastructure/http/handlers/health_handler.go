package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// HealthCheck is one dependency probed by GET /health. Only required checks
// turn the endpoint unhealthy.
type HealthCheck struct {
	Name     string
	Required bool
	Ping     func(ctx context.Context) error
}

type HealthHandler struct {
	checks []HealthCheck
	logger *zap.Logger
}

func NewHealthHandler(logger *zap.Logger, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	results := make(gin.H, len(h.checks))
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			results[check.Name] = "unavailable"
			h.logger.Warn("Health check failed", zap.String("dependency", check.Name), zap.Error(err))
			if check.Required {
				status, code = "unavailable", http.StatusServiceUnavailable
			} else if code == http.StatusOK {
				status = "degraded"
			}
			continue
		}
		results[check.Name] = "ok"
	}

	c.JSON(code, gin.H{"status": status, "checks": results})
}
