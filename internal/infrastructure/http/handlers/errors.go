package handlers

import (
	"errors"
	"net/http"

	"storefront/internal/domain/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors onto HTTP statuses. Unexpected errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error, action string) {
	status, message := http.StatusInternalServerError, "internal server error"

	switch {
	case errors.Is(err, model.ErrMalformedRequest), errors.Is(err, model.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrEmailTaken):
		status, message = http.StatusBadRequest, "Email already registered"
	case errors.Is(err, model.ErrInactiveUser):
		status, message = http.StatusBadRequest, "Inactive user"
	case errors.Is(err, model.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		status, message = http.StatusUnauthorized, "Incorrect username or password"
	case errors.Is(err, model.ErrPermissionDenied):
		status, message = http.StatusForbidden, "Not enough permissions"
	case errors.Is(err, model.ErrProductNotFound), errors.Is(err, model.ErrUserNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, model.ErrInsufficientStock):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, model.ErrStoreUnavailable):
		status, message = http.StatusServiceUnavailable, "service temporarily unavailable"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Failed to "+action, zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}
