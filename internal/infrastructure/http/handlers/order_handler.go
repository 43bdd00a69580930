package handlers

import (
	"encoding/json"
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	placer repository.OrderPlacer
	logger *zap.Logger
}

func NewOrderHandler(placer repository.OrderPlacer, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{placer: placer, logger: logger}
}

type createOrderRequest struct {
	ProductIDs []int64 `json:"product_ids"`
	Quantities []int   `json:"quantities"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid order body", zap.Int64("user_id", principal.UserID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.placer.Execute(c.Request.Context(), model.OrderRequest{
		UserID:     principal.UserID,
		ProductIDs: req.ProductIDs,
		Quantities: req.Quantities,
	})
	if err != nil {
		respondError(c, h.logger, err, "place order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Order created successfully",
		"total_amount": json.Number(result.Total.StringFixed(2)),
	})
}
