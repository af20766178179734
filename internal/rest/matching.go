package rest

import (
	"context"
	"errors"
	"makerLink/business/personalization"
	"makerLink/domain"
	"makerLink/pkg/logger"
	"makerLink/pkg/metrics"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

type (
	MatchingHandler struct {
		validate   *validator.Validate
		matching   MatchingService
		orders     RequirementProvider
		candidates CandidateProvider
		timeout    time.Duration
	}

	MatchingService interface {
		GetRankedMatches(
			ctx context.Context,
			order domain.OrderRequirement,
			candidates []domain.ManufacturerCapability,
			cctx domain.CustomerContext,
		) (*personalization.RankedMatches, error)
		RecordOutcome(
			ctx context.Context,
			choice domain.CustomerChoice,
			cctx domain.CustomerContext,
			complexity domain.ComplexityLevel,
		) error
	}

	RequirementProvider interface {
		GetRequirement(ctx context.Context, orderID uint64) (domain.OrderRequirement, error)
	}

	CandidateProvider interface {
		GetCandidates(ctx context.Context) ([]domain.ManufacturerCapability, error)
	}

	MatchQuery struct {
		OrderID         uint64 `query:"order_id" validate:"required"`
		SessionID       string `query:"session_id" validate:"required"`
		Limit           int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
		PricePriority   bool   `query:"price_priority"`
		QualityPriority bool   `query:"quality_priority"`
		RushOrders      bool   `query:"rush_orders"`
		PrefersLocal    bool   `query:"prefers_local"`
		PremiumBuyer    bool   `query:"premium_buyer"`
	}

	OutcomeRequest struct {
		SessionID            string                 `json:"session_id" validate:"required"`
		OrderID              uint64                 `json:"order_id" validate:"required"`
		ChosenManufacturerID uint64                 `json:"chosen_manufacturer_id"`
		ChosenRank           int                    `json:"chosen_rank"`
		ChoiceType           string                 `json:"choice_type" validate:"required,oneof=selected contacted rejected_all abandoned"`
		CitedFactors         []string               `json:"cited_factors"`
		DecisionLatencyMS    int64                  `json:"decision_latency_ms"`
		Context              map[string]interface{} `json:"context"`
		PricePriority        bool                   `json:"price_priority"`
		QualityPriority      bool                   `json:"quality_priority"`
		RushOrders           bool                   `json:"rush_orders"`
		PrefersLocal         bool                   `json:"prefers_local"`
		PremiumBuyer         bool                   `json:"premium_buyer"`
	}
)

func NewMatchingHandler(
	matching MatchingService,
	orders RequirementProvider,
	candidates CandidateProvider,
) *MatchingHandler {
	return &MatchingHandler{
		validate:   validator.New(),
		matching:   matching,
		orders:     orders,
		candidates: candidates,
		timeout:    10 * time.Second,
	}
}

// GET /api/v1/matches?order_id=42&session_id=abc&price_priority=true
func (h *MatchingHandler) GetMatches(c echo.Context) error {
	started := time.Now()
	metrics.MatchRequests.Inc()

	var q MatchQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.orders.GetRequirement(ctx, q.OrderID)
	if err != nil {
		logger.Error("failed to load order requirement", err)
		return c.JSON(http.StatusNotFound, ResponseError{Message: "order requirement not found"})
	}

	candidates, err := h.candidates.GetCandidates(ctx)
	if err != nil {
		logger.Error("failed to load candidates", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	cctx := domain.CustomerContext{
		SessionID:       q.SessionID,
		PricePriority:   q.PricePriority,
		QualityPriority: q.QualityPriority,
		RushOrders:      q.RushOrders,
		PrefersLocal:    q.PrefersLocal,
		PremiumBuyer:    q.PremiumBuyer,
	}
	if userID, ok := c.Get("user_id").(uint); ok {
		cctx.CustomerID = userID
	}

	result, err := h.matching.GetRankedMatches(ctx, order, candidates, cctx)
	if err != nil {
		logger.Error("matching run failed", err)
		return matchingErrorResponse(c, err)
	}

	// full ranking is persisted; the response is what gets trimmed
	if q.Limit > 0 && len(result.Matches) > q.Limit {
		result.Matches = result.Matches[:q.Limit]
	}

	metrics.MatchRequestLatency.Observe(time.Since(started).Seconds())

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// POST /api/v1/matches/outcome
func (h *MatchingHandler) RecordOutcome(c echo.Context) error {
	metrics.OutcomeRequests.Inc()

	var req OutcomeRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		logger.Error("Failed to validate outcome request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	// complexity comes from the order the session matched against
	complexity := domain.ComplexityModerate
	if order, err := h.orders.GetRequirement(ctx, req.OrderID); err == nil {
		complexity = order.Complexity
	}

	choice := domain.CustomerChoice{
		SessionID:            req.SessionID,
		OrderID:              req.OrderID,
		ChosenManufacturerID: req.ChosenManufacturerID,
		ChosenRank:           req.ChosenRank,
		ChoiceType:           domain.ChoiceType(req.ChoiceType),
		CitedFactors:         datatypes.JSONSlice[string](req.CitedFactors),
		DecisionLatencyMS:    req.DecisionLatencyMS,
		Context:              datatypes.JSONMap(req.Context),
	}

	cctx := domain.CustomerContext{
		SessionID:       req.SessionID,
		PricePriority:   req.PricePriority,
		QualityPriority: req.QualityPriority,
		RushOrders:      req.RushOrders,
		PrefersLocal:    req.PrefersLocal,
		PremiumBuyer:    req.PremiumBuyer,
	}
	if userID, ok := c.Get("user_id").(uint); ok {
		cctx.CustomerID = userID
	}

	if err := h.matching.RecordOutcome(ctx, choice, cctx, complexity); err != nil {
		logger.Error("failed to record outcome", err)
		return matchingErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Outcome recorded"))
}

// matchingErrorResponse maps the domain error types onto status codes.
func matchingErrorResponse(c echo.Context, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	var stateErr *domain.StateError
	if errors.As(err, &stateErr) {
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
}
