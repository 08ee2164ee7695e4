package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/audit"
	"github.com/Fadil369/brainsait-healthcare-platform/internal/domain"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.OrderDetail, error)
	GetOrder(ctx context.Context, id string) (*domain.OrderDetail, error)
	ListOrders(ctx context.Context, status, userID *string, limit, offset int) (*domain.OrderList, error)
	UpdateOrderStatus(ctx context.Context, id, newStatus string) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
}

type orderServer struct {
	orderService OrderService
	auditLog     *log.Logger
}

func NewOrderServer(orderService OrderService, auditLog *log.Logger) *orderServer {
	return &orderServer{
		orderService: orderService,
		auditLog:     auditLog,
	}
}

func handleOrderError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusBadRequest, "unknown product"
	case errors.Is(err, domain.ErrProductInactive):
		return http.StatusBadRequest, "product is not available"
	case errors.Is(err, domain.ErrEmptyOrder), errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidOrderStatus), errors.Is(err, domain.ErrInvalidUUID):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrInvalidOrderTransition):
		return http.StatusConflict, "invalid status transition"
	case errors.Is(err, domain.ErrOrderNotCancellable):
		return http.StatusConflict, "order can no longer be cancelled"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (s *orderServer) CreateOrder(c echo.Context) error {
	var req domain.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	detail, err := s.orderService.CreateOrder(c.Request().Context(), req)
	if err != nil {
		log.WithError(err).Error("Failed to create order")
		statusCode, errorMsg := handleOrderError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	opts := []audit.Option{
		audit.WithResourceID(detail.ID),
		audit.WithDetail("total_cents", detail.TotalCents),
	}
	if req.UserID != nil {
		opts = append(opts, audit.WithUser(*req.UserID))
	}
	audit.Record(s.auditLog, audit.ActionOrderCreate, "order", opts...)

	return c.JSON(http.StatusCreated, detail)
}

func (s *orderServer) ListOrders(c echo.Context) error {
	status := c.QueryParam("status")
	userID := c.QueryParam("user_id")
	limit, offset := parseListParams(c)

	var statusPtr, userIDPtr *string
	if status != "" {
		statusPtr = &status
	}
	if userID != "" {
		userIDPtr = &userID
	}

	list, err := s.orderService.ListOrders(c.Request().Context(), statusPtr, userIDPtr, limit, offset)
	if err != nil {
		log.WithError(err).Error("Failed to list orders")
		statusCode, errorMsg := handleOrderError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	return c.JSON(http.StatusOK, list)
}

func (s *orderServer) GetOrder(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	detail, err := s.orderService.GetOrder(c.Request().Context(), id)
	if err != nil {
		log.WithError(err).WithField("order_id", id).Error("Failed to get order")
		statusCode, errorMsg := handleOrderError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	audit.Record(s.auditLog, audit.ActionOrderView, "order",
		audit.WithResourceID(detail.ID),
	)

	return c.JSON(http.StatusOK, detail)
}

func (s *orderServer) UpdateOrderStatus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	var req domain.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	order, err := s.orderService.UpdateOrderStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		log.WithError(err).WithField("order_id", id).Error("Failed to update order status")
		statusCode, errorMsg := handleOrderError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	audit.Record(s.auditLog, audit.ActionOrderUpdate, "order",
		audit.WithResourceID(order.ID),
		audit.WithDetail("status", order.Status),
	)

	return c.JSON(http.StatusOK, order)
}

func (s *orderServer) CancelOrder(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request",
		})
	}

	order, err := s.orderService.CancelOrder(c.Request().Context(), id)
	if err != nil {
		log.WithError(err).WithField("order_id", id).Error("Failed to cancel order")
		statusCode, errorMsg := handleOrderError(err)
		return c.JSON(statusCode, map[string]string{
			"error": errorMsg,
		})
	}

	audit.Record(s.auditLog, audit.ActionOrderCancel, "order",
		audit.WithResourceID(order.ID),
	)

	return c.JSON(http.StatusOK, order)
}
