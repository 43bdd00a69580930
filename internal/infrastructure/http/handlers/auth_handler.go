package handlers

import (
	"net/http"

	"storefront/internal/domain/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	registrar     repository.UserRegistrar
	authenticator repository.Authenticator
	logger        *zap.Logger
}

func NewAuthHandler(registrar repository.UserRegistrar, authenticator repository.Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{registrar: registrar, authenticator: authenticator, logger: logger}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.registrar.Execute(c.Request.Context(), req.Email, req.Password, req.IsSuperuser)
	if err != nil {
		respondError(c, h.logger, err, "register user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Token implements the OAuth2 password grant form: username and password.
func (h *AuthHandler) Token(c *gin.Context) {
	username, password := c.PostForm("username"), c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, err := h.authenticator.Execute(c.Request.Context(), username, password)
	if err != nil {
		respondError(c, h.logger, err, "issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}
