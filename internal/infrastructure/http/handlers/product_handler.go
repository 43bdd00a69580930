package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// multipart overhead allowed on top of the image itself
const formOverhead = 1 << 20

type ProductHandler struct {
	creator   repository.ProductCreator
	deleter   repository.ProductDeleter
	getter    repository.ProductGetter
	lister    repository.ProductLister
	maxUpload int64
	logger    *zap.Logger
}

func NewProductHandler(
	creator repository.ProductCreator,
	deleter repository.ProductDeleter,
	getter repository.ProductGetter,
	lister repository.ProductLister,
	maxUpload int64,
	logger *zap.Logger,
) *ProductHandler {
	return &ProductHandler{
		creator:   creator,
		deleter:   deleter,
		getter:    getter,
		lister:    lister,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

type listQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=0"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

func (h *ProductHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit and offset must be non-negative integers"})
		return
	}

	products, err := h.lister.Execute(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, err, "list products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.getter.Execute(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

type createProductForm struct {
	Name        string  `form:"name" binding:"required"`
	Description *string `form:"description"`
	Price       string  `form:"price" binding:"required"`
	Quantity    int     `form:"quantity"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+formOverhead)

	var form createProductForm
	if err := c.ShouldBind(&form); err != nil {
		h.badForm(c, err)
		return
	}
	price, err := decimal.NewFromString(form.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a decimal number"})
		return
	}

	image, err := h.readImage(c)
	if err != nil {
		h.badForm(c, err)
		return
	}

	product, err := h.creator.Execute(c.Request.Context(), principal, &model.Product{
		Name:        form.Name,
		Description: form.Description,
		Price:       price,
		Quantity:    form.Quantity,
	}, image)
	if err != nil {
		respondError(c, h.logger, err, "create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) readImage(c *gin.Context) (*model.ProductImage, error) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if header.Size > h.maxUpload {
		return nil, errImageTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > h.maxUpload {
		return nil, errImageTooLarge
	}
	return &model.ProductImage{Filename: header.Filename, Size: int64(len(content)), Content: content}, nil
}

var errImageTooLarge = errors.New("image too large")

func (h *ProductHandler) badForm(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, errImageTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product form: " + err.Error()})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := h.deleter.Execute(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.logger, err, "delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product id must be a positive integer"})
		return 0, false
	}
	return id, true
}
