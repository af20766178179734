package rest

import (
	"context"
	"makerLink/domain"
	"makerLink/pkg/logger"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type (
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
		timeout       time.Duration
	}

	OrdersService interface {
		CreateOrder(ctx context.Context, data domain.Orders) (domain.Orders, error)
		GetAllOrders(ctx context.Context) ([]domain.Orders, error)
		GetOrder(ctx context.Context, orderID uint64) (domain.Orders, error)
		UpdateOrder(ctx context.Context, data domain.Orders) error
		DeleteOrder(ctx context.Context, orderID uint64) error
		SetRequirement(ctx context.Context, requirement *domain.OrderRequirement) error
		GetRequirement(ctx context.Context, orderID uint64) (domain.OrderRequirement, error)
	}

	OrdersInput struct {
		Title       string  `json:"title" validate:"required"`
		Quantity    int     `json:"quantity" validate:"required,gt=0"`
		TargetPrice float64 `json:"target_price" validate:"gte=0"`
	}

	UpdateOrderInput struct {
		Quantity    int     `json:"quantity" validate:"required,gt=0"`
		TargetPrice float64 `json:"target_price" validate:"gte=0"`
	}

	RequirementInput struct {
		ManufacturingProcess string   `json:"manufacturing_process" validate:"required"`
		Material             string   `json:"material"`
		IndustryCategory     string   `json:"industry_category"`
		Certifications       []string `json:"certifications"`
		Complexity           string   `json:"complexity_level" validate:"omitempty,oneof=simple moderate high critical"`
	}
)

func NewOrdersHandler(ordersService OrdersService) *OrdersHandler {
	return &OrdersHandler{
		validate:      validator.New(),
		ordersService: ordersService,
		timeout:       10 * time.Second,
	}
}

func (h *OrdersHandler) CreateOrderItem(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var request OrdersInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate order input", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orderItem, err := h.ordersService.CreateOrder(ctx, domain.Orders{
		CustomerID:  uint64(userID),
		Title:       request.Title,
		Quantity:    request.Quantity,
		TargetPrice: request.TargetPrice,
	})
	if err != nil {
		logger.Error("Failed to create order", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(orderItem))
}

func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, err := h.ordersService.GetAllOrders(ctx)
	if err != nil {
		logger.Error("Failed to get all orders", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(orders))
}

func (h *OrdersHandler) GetOrder(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, orderID)
	if err != nil {
		logger.Error("Failed to get order", err)
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateOrder(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order id"})
	}

	var request UpdateOrderInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate order update", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err = h.ordersService.UpdateOrder(ctx, domain.Orders{
		ID:          orderID,
		Quantity:    request.Quantity,
		TargetPrice: request.TargetPrice,
	})
	if err != nil {
		logger.Error("Failed to update order", err)
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Order updated successfully"))
}

func (h *OrdersHandler) DeleteOrder(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.ordersService.DeleteOrder(ctx, orderID); err != nil {
		logger.Error("Failed to delete order", err)
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Order deleted successfully"))
}

// PUT /api/v1/orders/:id/requirement
func (h *OrdersHandler) SetRequirement(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order id"})
	}

	var request RequirementInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate requirement input", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	requirement := &domain.OrderRequirement{
		OrderID:              orderID,
		ManufacturingProcess: request.ManufacturingProcess,
		Material:             request.Material,
		IndustryCategory:     request.IndustryCategory,
		Certifications:       datatypes.JSONSlice[string](request.Certifications),
		Complexity:           domain.ComplexityLevel(request.Complexity),
	}

	if err := h.ordersService.SetRequirement(ctx, requirement); err != nil {
		logger.Error("Failed to set requirement", err)
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(requirement))
}

// GET /api/v1/orders/:id/requirement
func (h *OrdersHandler) GetRequirement(c echo.Context) error {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	requirement, err := h.ordersService.GetRequirement(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(requirement))
}
