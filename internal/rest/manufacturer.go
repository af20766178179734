package rest

import (
	"context"
	"makerLink/domain"
	"makerLink/pkg/logger"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type ManufacturerService interface {
	GetAllManufacturers(ctx context.Context) ([]domain.Manufacturer, error)
	GetManufacturerByID(ctx context.Context, id uint64) (*domain.Manufacturer, error)
	CreateManufacturer(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error)
	UpdateManufacturer(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error)
	DeleteManufacturer(ctx context.Context, id uint64) error
	SetCapability(ctx context.Context, capability *domain.ManufacturerCapability) error
	GetCapability(ctx context.Context, manufacturerID uint64) (*domain.ManufacturerCapability, error)
}

type ManufacturerHandler struct {
	manufacturerService ManufacturerService
	validator           *validator.Validate
	timeout             time.Duration
}

func NewManufacturerHandler(manufacturerService ManufacturerService) *ManufacturerHandler {
	return &ManufacturerHandler{
		manufacturerService: manufacturerService,
		validator:           validator.New(),
		timeout:             10 * time.Second,
	}
}

type CreateManufacturerRequest struct {
	Name         string  `json:"name" validate:"required"`
	Region       string  `json:"region"`
	Rating       float64 `json:"rating" validate:"gte=0,lte=5"`
	LeadTimeDays int     `json:"lead_time_days" validate:"gte=0"`
	IsActive     bool    `json:"is_active"`
}

type CapabilityRequest struct {
	ManufacturingProcesses []string `json:"manufacturing_processes" validate:"required,min=1"`
	Materials              []string `json:"materials"`
	IndustriesServed       []string `json:"industries_served"`
	Certifications         []string `json:"certifications"`
}

func (h *ManufacturerHandler) GetAllManufacturers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	manufacturers, err := h.manufacturerService.GetAllManufacturers(ctx)
	if err != nil {
		logger.Error("Failed to find all manufacturers", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":       "successfully get all manufacturers",
		"manufacturers": manufacturers,
	})
}

func (h *ManufacturerHandler) GetManufacturerByID(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid manufacturer id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	manufacturer, err := h.manufacturerService.GetManufacturerByID(ctx, id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "successfully find manufacturer by id",
		"manufacturer": manufacturer,
	})
}

func (h *ManufacturerHandler) CreateManufacturer(c echo.Context) error {
	var req CreateManufacturerRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate manufacturer request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	manufacturer := &domain.Manufacturer{
		Name:         req.Name,
		Region:       req.Region,
		Rating:       req.Rating,
		LeadTimeDays: req.LeadTimeDays,
		IsActive:     req.IsActive,
	}

	created, err := h.manufacturerService.CreateManufacturer(ctx, manufacturer)
	if err != nil {
		logger.Error("Failed to create manufacturer", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":      "Manufacturer successfully created",
		"manufacturer": created,
	})
}

func (h *ManufacturerHandler) UpdateManufacturer(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid manufacturer id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req CreateManufacturerRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate manufacturer request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	manufacturer := &domain.Manufacturer{
		ID:           id,
		Name:         req.Name,
		Region:       req.Region,
		Rating:       req.Rating,
		LeadTimeDays: req.LeadTimeDays,
		IsActive:     req.IsActive,
	}

	updated, err := h.manufacturerService.UpdateManufacturer(ctx, manufacturer)
	if err != nil {
		logger.Error("Failed to update manufacturer", err)
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "successfully update manufacturer",
		"manufacturer": updated,
	})
}

func (h *ManufacturerHandler) DeleteManufacturer(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid manufacturer id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err = h.manufacturerService.DeleteManufacturer(ctx, id)
	if err != nil {
		logger.Error("Failed to delete manufacturer", err)
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "invalid") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":         "manufacturer successfully deleted",
		"manufacturer_id": id,
	})
}

// PUT /api/v1/manufacturers/:id/capability
func (h *ManufacturerHandler) SetCapability(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid manufacturer id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req CapabilityRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate capability request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	capability := &domain.ManufacturerCapability{
		ManufacturerID:         id,
		ManufacturingProcesses: datatypes.JSONSlice[string](req.ManufacturingProcesses),
		Materials:              datatypes.JSONSlice[string](req.Materials),
		IndustriesServed:       datatypes.JSONSlice[string](req.IndustriesServed),
		Certifications:         datatypes.JSONSlice[string](req.Certifications),
	}

	if err := h.manufacturerService.SetCapability(ctx, capability); err != nil {
		logger.Error("Failed to set capability", err)
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "capability saved",
		"capability": capability,
	})
}

// GET /api/v1/manufacturers/:id/capability
func (h *ManufacturerHandler) GetCapability(c echo.Context) error {
	idStr := c.Param("id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		logger.Error("Invalid manufacturer id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	capability, err := h.manufacturerService.GetCapability(ctx, id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "successfully find capability",
		"capability": capability,
	})
}
