package rest

import (
	"context"
	"makerLink/business/experiment"
	"makerLink/domain"
	"makerLink/pkg/logger"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	ExperimentAdminHandler struct {
		engine  ExperimentEngine
		timeout time.Duration
	}

	ExperimentEngine interface {
		Create(ctx context.Context, params experiment.CreateParams) (*domain.Experiment, error)
		Start(ctx context.Context, id string) (*domain.Experiment, error)
		Stop(ctx context.Context, id, reason string) (*domain.Experiment, error)
		Analyze(ctx context.Context, id string) (*domain.ExperimentResults, error)
		CheckStoppingRules(ctx context.Context, id string) (bool, string, error)
		Get(ctx context.Context, id string) (*domain.Experiment, error)
		List(ctx context.Context, status domain.ExperimentStatus) ([]domain.Experiment, error)
	}

	CreateExperimentRequest struct {
		Name              string                          `json:"name"`
		Type              string                          `json:"experiment_type"`
		ControlConfig     domain.VariantConfig            `json:"control_config"`
		TreatmentConfigs  map[string]domain.VariantConfig `json:"treatment_configs"`
		TrafficAllocation map[string]float64              `json:"traffic_allocation"`
		PrimaryMetric     string                          `json:"primary_metric"`
		MinimumSampleSize int                             `json:"minimum_sample_size"`
		MinimumEffectSize float64                         `json:"minimum_effect_size"`
		ConfidenceLevel   float64                         `json:"confidence_level"`
		MaxDurationDays   int                             `json:"max_duration_days"`
	}

	StopExperimentRequest struct {
		Reason string `json:"reason"`
	}
)

func NewExperimentAdminHandler(engine ExperimentEngine) *ExperimentAdminHandler {
	return &ExperimentAdminHandler{
		engine:  engine,
		timeout: 10 * time.Second,
	}
}

// POST /api/v1/admin/experiments
func (h *ExperimentAdminHandler) Create(c echo.Context) error {
	var req CreateExperimentRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exp, err := h.engine.Create(ctx, experiment.CreateParams{
		Name:              req.Name,
		Type:              domain.ExperimentType(req.Type),
		ControlConfig:     req.ControlConfig,
		TreatmentConfigs:  req.TreatmentConfigs,
		TrafficAllocation: req.TrafficAllocation,
		PrimaryMetric:     domain.MetricType(req.PrimaryMetric),
		MinimumSampleSize: req.MinimumSampleSize,
		MinimumEffectSize: req.MinimumEffectSize,
		ConfidenceLevel:   req.ConfidenceLevel,
		MaxDurationDays:   req.MaxDurationDays,
	})
	if err != nil {
		logger.Error("Failed to create experiment", err)
		return matchingErrorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(exp))
}

// POST /api/v1/admin/experiments/:id/start
func (h *ExperimentAdminHandler) Start(c echo.Context) error {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exp, err := h.engine.Start(ctx, id)
	if err != nil {
		logger.Error("Failed to start experiment", err)
		return matchingErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(exp))
}

// POST /api/v1/admin/experiments/:id/stop
func (h *ExperimentAdminHandler) Stop(c echo.Context) error {
	id := c.Param("id")

	var req StopExperimentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if req.Reason == "" {
		req.Reason = "stopped manually"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exp, err := h.engine.Stop(ctx, id, req.Reason)
	if err != nil {
		logger.Error("Failed to stop experiment", err)
		return matchingErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(exp))
}

// GET /api/v1/admin/experiments/:id/results
func (h *ExperimentAdminHandler) Results(c echo.Context) error {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	results, err := h.engine.Analyze(ctx, id)
	if err != nil {
		logger.Error("Failed to analyze experiment", err)
		return matchingErrorResponse(c, err)
	}

	if results == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "no participants yet",
		})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}

// GET /api/v1/admin/experiments/:id/stopping-check
func (h *ExperimentAdminHandler) StoppingCheck(c echo.Context) error {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	shouldStop, reason, err := h.engine.CheckStoppingRules(ctx, id)
	if err != nil {
		logger.Error("Failed to evaluate stopping rules", err)
		return matchingErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"should_stop": shouldStop,
		"reason":      reason,
	})
}

// GET /api/v1/admin/experiments/:id
func (h *ExperimentAdminHandler) Get(c echo.Context) error {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exp, err := h.engine.Get(ctx, id)
	if err != nil {
		return matchingErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(exp))
}

// GET /api/v1/admin/experiments?status=active
func (h *ExperimentAdminHandler) List(c echo.Context) error {
	status := domain.ExperimentStatus(c.QueryParam("status"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	experiments, err := h.engine.List(ctx, status)
	if err != nil {
		logger.Error("Failed to list experiments", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(experiments))
}
