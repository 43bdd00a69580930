package handlers

import (
	"net/http"

	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	deleter repository.UserDeleter
	logger  *zap.Logger
}

func NewUserHandler(deleter repository.UserDeleter, logger *zap.Logger) *UserHandler {
	return &UserHandler{deleter: deleter, logger: logger}
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}

	if err := h.deleter.Execute(c.Request.Context(), principal); err != nil {
		respondError(c, h.logger, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
