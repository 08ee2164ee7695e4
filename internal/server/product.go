package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/audit"
	"github.com/Fadil369/brainsait-healthcare-platform/internal/domain"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type ProductService interface {
	ListProducts(ctx context.Context, category *string, onlyActive bool, limit, offset int) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productServer struct {
	productService ProductService
	auditLog       *log.Logger
}

func NewProductServer(productService ProductService, auditLog *log.Logger) *productServer {
	return &productServer{
		productService: productService,
		auditLog:       auditLog,
	}
}

func handleProductError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, domain.ErrProductSKUExists):
		return http.StatusConflict, "product with this sku already exists"
	case errors.Is(err, domain.ErrInvalidProductSKU), errors.Is(err, domain.ErrInvalidProductName), errors.Is(err, domain.ErrInvalidPrice), errors.Is(err, domain.ErrInvalidUUID):
		return http.StatusBadRequest, "invalid request"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// parseListParams reads the shared limit/offset query parameters, falling
// back to the defaults on anything unparseable.
func parseListParams(c echo.Context) (int, int) {
	limit := 10
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

func (s *productServer) ListProducts(c echo.Context) error {
	category := c.QueryParam("category")
	onlyActive := c.QueryParam("only_active") == "true"
	limit, offset := parseListParams(c)

	var categoryPtr *string
	if category != "" {
		categoryPtr = &category
	}

	products, err := s.productService.ListProducts(c.Request().Context(), categoryPtr, onlyActive, limit, offset)
	if err != nil {
		log.WithError(err).Error("Failed to list products")
		statusCode, errorMsg := handleProductError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	if products == nil {
		products = []domain.Product{}
	}

	return c.JSON(http.StatusOK, products)
}

func (s *productServer) GetProductByID(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	product, err := s.productService.GetProductByID(c.Request().Context(), id)
	if err != nil {
		log.WithError(err).WithField("product_id", id).Error("Failed to get product")
		statusCode, errorMsg := handleProductError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	audit.Record(s.auditLog, audit.ActionProductView, "product",
		audit.WithResourceID(product.ID),
	)

	return c.JSON(http.StatusOK, product)
}

func (s *productServer) CreateProduct(c echo.Context) error {
	var req domain.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	product, err := s.productService.CreateProduct(c.Request().Context(), req)
	if err != nil {
		log.WithError(err).Error("Failed to create product")
		statusCode, errorMsg := handleProductError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	audit.Record(s.auditLog, audit.ActionProductCreate, "product",
		audit.WithResourceID(product.ID),
		audit.WithDetail("sku", product.SKU),
	)

	return c.JSON(http.StatusCreated, product)
}

func (s *productServer) UpdateProduct(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	var req domain.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	product, err := s.productService.UpdateProduct(c.Request().Context(), id, req)
	if err != nil {
		log.WithError(err).WithField("product_id", id).Error("Failed to update product")
		statusCode, errorMsg := handleProductError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	audit.Record(s.auditLog, audit.ActionProductUpdate, "product",
		audit.WithResourceID(product.ID),
	)

	return c.JSON(http.StatusOK, product)
}

func (s *productServer) DeleteProduct(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	err := s.productService.DeleteProduct(c.Request().Context(), id)
	if err != nil {
		log.WithError(err).WithField("product_id", id).Error("Failed to delete product")
		statusCode, errorMsg := handleProductError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	audit.Record(s.auditLog, audit.ActionProductDelete, "product",
		audit.WithResourceID(id),
	)

	return c.NoContent(http.StatusNoContent)
}
