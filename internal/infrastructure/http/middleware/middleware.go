package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const principalKey = "principal"

// Logger writes one structured access log line per request.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// Auth resolves the bearer token into a principal stored on the context.
func Auth(resolver repository.PrincipalResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}

		principal, err := resolver.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(principalKey, *principal)
			c.Next()
		case errors.Is(err, model.ErrInvalidCredentials):
			unauthorized(c)
		case errors.Is(err, model.ErrInactiveUser):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Inactive user"})
		case errors.Is(err, model.ErrStoreUnavailable):
			logger.Error("Failed to resolve principal", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
		default:
			logger.Error("Failed to resolve principal", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
	}
}

// RequireSuperuser must run after Auth.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok || !principal.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (model.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}

// WithPrincipal stores principal on the context the way Auth does.
func WithPrincipal(c *gin.Context, principal model.Principal) {
	c.Set(principalKey, principal)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
}
