package orders

import (
	"context"
	"errors"
	"fmt"
	"makerLink/domain"
	"makerLink/pkg/logger"
	"time"
)

type OrdersRepository interface {
	CreateOrder(ctx context.Context, data domain.Orders) (domain.Orders, error)
	GetAllOrders(ctx context.Context) ([]domain.Orders, error)
	GetOrder(ctx context.Context, orderID uint64) (domain.Orders, error)
	UpdateOrder(ctx context.Context, data domain.Orders) error
	DeleteOrder(ctx context.Context, orderID uint64) error
}

// RequirementRepository stores the technical requirement attached to an order.
type RequirementRepository interface {
	Upsert(ctx context.Context, requirement *domain.OrderRequirement) error
	FindByOrderID(ctx context.Context, orderID uint64) (domain.OrderRequirement, error)
}

type OrdersService struct {
	orderRepo       OrdersRepository
	requirementRepo RequirementRepository
}

func NewOrdersService(orderRepo OrdersRepository, requirementRepo RequirementRepository) *OrdersService {
	return &OrdersService{
		orderRepo:       orderRepo,
		requirementRepo: requirementRepo,
	}
}

func (s *OrdersService) CreateOrder(ctx context.Context, data domain.Orders) (domain.Orders, error) {
	if data.CustomerID == 0 {
		return domain.Orders{}, errors.New("customer id is required")
	}
	if data.Quantity <= 0 {
		return domain.Orders{}, errors.New("quantity must be greater than 0")
	}

	data.OrderStatus = "PENDING"
	data.CreatedAt = time.Now()
	data.UpdatedAt = time.Now()

	return s.orderRepo.CreateOrder(ctx, data)
}

func (s *OrdersService) GetAllOrders(ctx context.Context) ([]domain.Orders, error) {
	return s.orderRepo.GetAllOrders(ctx)
}

func (s *OrdersService) GetOrder(ctx context.Context, orderID uint64) (domain.Orders, error) {
	return s.orderRepo.GetOrder(ctx, orderID)
}

func (s *OrdersService) UpdateOrder(ctx context.Context, data domain.Orders) error {
	return s.orderRepo.UpdateOrder(ctx, data)
}

func (s *OrdersService) DeleteOrder(ctx context.Context, orderID uint64) error {
	return s.orderRepo.DeleteOrder(ctx, orderID)
}

func (s *OrdersService) SetRequirement(ctx context.Context, requirement *domain.OrderRequirement) error {
	if requirement.OrderID == 0 {
		return errors.New("order id is required")
	}
	if requirement.ManufacturingProcess == "" {
		return errors.New("manufacturing process is required")
	}

	switch requirement.Complexity {
	case domain.ComplexitySimple, domain.ComplexityModerate, domain.ComplexityHigh, domain.ComplexityCritical:
	case "":
		requirement.Complexity = domain.ComplexityModerate
	default:
		return domain.NewValidationError("complexity_level", "unknown complexity level")
	}

	// Verify order exists
	if _, err := s.orderRepo.GetOrder(ctx, requirement.OrderID); err != nil {
		logger.Error("order not found when setting requirement", err)
		return errors.New("order not found")
	}

	if err := s.requirementRepo.Upsert(ctx, requirement); err != nil {
		logger.Error("failed to save order requirement", err)
		return fmt.Errorf("failed to save requirement: %w", err)
	}

	logger.Info("order requirement saved", "order_id", requirement.OrderID)

	return nil
}

func (s *OrdersService) GetRequirement(ctx context.Context, orderID uint64) (domain.OrderRequirement, error) {
	return s.requirementRepo.FindByOrderID(ctx, orderID)
}
