package manufacturer

import (
	"context"
	"errors"
	"fmt"
	"makerLink/domain"
	"makerLink/pkg/logger"
)

// ManufacturerRepository contract interface
type ManufacturerRepository interface {
	Create(ctx context.Context, manufacturer *domain.Manufacturer) error
	FindByID(ctx context.Context, id uint64) (domain.Manufacturer, error)
	FindAll(ctx context.Context) ([]domain.Manufacturer, error)
	Update(ctx context.Context, manufacturer *domain.Manufacturer) error
	Delete(ctx context.Context, id uint64) error
}

// CapabilityRepository stores the declared capability profile per manufacturer.
type CapabilityRepository interface {
	Upsert(ctx context.Context, capability *domain.ManufacturerCapability) error
	FindByManufacturerID(ctx context.Context, manufacturerID uint64) (domain.ManufacturerCapability, error)
	FindAllActive(ctx context.Context) ([]domain.ManufacturerCapability, error)
}

type manufacturerService struct {
	manufacturerRepo ManufacturerRepository
	capabilityRepo   CapabilityRepository
}

func NewManufacturerService(manufacturerRepo ManufacturerRepository, capabilityRepo CapabilityRepository) *manufacturerService {
	return &manufacturerService{
		manufacturerRepo: manufacturerRepo,
		capabilityRepo:   capabilityRepo,
	}
}

func (s *manufacturerService) GetAllManufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all manufacturers")
		return nil, fmt.Errorf("context error: %w", err)
	}

	manufacturers, err := s.manufacturerRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to find all manufacturers", err)
		return nil, err
	}

	return manufacturers, nil
}

func (s *manufacturerService) GetManufacturerByID(ctx context.Context, id uint64) (*domain.Manufacturer, error) {
	if id == 0 {
		logger.Error("invalid manufacturer id")
		return nil, errors.New("invalid manufacturer id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when get manufacturer")
		return nil, fmt.Errorf("context error: %w", err)
	}

	manufacturer, err := s.manufacturerRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find manufacturer by id", err.Error())
		return nil, err
	}

	return &manufacturer, nil
}

func (s *manufacturerService) CreateManufacturer(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create manufacturer")
		return nil, fmt.Errorf("context error: %w", err)
	}

	// Validation
	if manufacturer.Name == "" {
		logger.Error("Invalid manufacturer data: name is required")
		return nil, errors.New("manufacturer name is required")
	}

	if manufacturer.Rating < 0 || manufacturer.Rating > 5 {
		logger.Error("Invalid manufacturer data: rating must be between 0 and 5")
		return nil, errors.New("rating must be between 0 and 5")
	}

	if manufacturer.LeadTimeDays < 0 {
		logger.Error("Invalid manufacturer data: lead time cannot be negative")
		return nil, errors.New("lead time cannot be negative")
	}

	if err := s.manufacturerRepo.Create(ctx, manufacturer); err != nil {
		logger.Error("failed to create new manufacturer", err)
		return nil, fmt.Errorf("failed to create manufacturer: %w", err)
	}

	logger.Info("manufacturer created successfully")

	return manufacturer, nil
}

func (s *manufacturerService) UpdateManufacturer(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating manufacturer")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if manufacturer.ID == 0 {
		logger.Error("Invalid manufacturer data: ID is required")
		return nil, errors.New("manufacturer ID is required")
	}

	// Verify manufacturer exists
	_, err := s.manufacturerRepo.FindByID(ctx, manufacturer.ID)
	if err != nil {
		logger.Error("manufacturer not found", err)
		return nil, errors.New("manufacturer not found")
	}

	if err := s.manufacturerRepo.Update(ctx, manufacturer); err != nil {
		logger.Error("failed to update manufacturer", err)
		return nil, fmt.Errorf("failed to update manufacturer: %w", err)
	}

	updated, err := s.manufacturerRepo.FindByID(ctx, manufacturer.ID)
	if err != nil {
		logger.Error("failed to fetch updated manufacturer", err)
		return nil, fmt.Errorf("failed to fetch updated manufacturer: %w", err)
	}

	logger.Info("manufacturer updated success")

	return &updated, nil
}

func (s *manufacturerService) DeleteManufacturer(ctx context.Context, id uint64) error {
	if id == 0 {
		logger.Error("invalid manufacturer id when deleting manufacturer")
		return errors.New("invalid manufacturer id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting manufacturer")
		return fmt.Errorf("context error: %w", err)
	}

	// Verify manufacturer exists
	_, err := s.manufacturerRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("manufacturer not found", err)
		return errors.New("manufacturer not found")
	}

	if err := s.manufacturerRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete manufacturer", err)
		return fmt.Errorf("failed to delete manufacturer: %w", err)
	}

	logger.Info("manufacturer deleted success")

	return nil
}

func (s *manufacturerService) SetCapability(ctx context.Context, capability *domain.ManufacturerCapability) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when setting capability")
		return fmt.Errorf("context error: %w", err)
	}

	if capability.ManufacturerID == 0 {
		logger.Error("Invalid capability data: manufacturer ID is required")
		return errors.New("manufacturer ID is required")
	}

	if len(capability.ManufacturingProcesses) == 0 {
		logger.Error("Invalid capability data: at least one manufacturing process is required")
		return errors.New("at least one manufacturing process is required")
	}

	// Verify manufacturer exists
	if _, err := s.manufacturerRepo.FindByID(ctx, capability.ManufacturerID); err != nil {
		logger.Error("manufacturer not found", err)
		return errors.New("manufacturer not found")
	}

	if err := s.capabilityRepo.Upsert(ctx, capability); err != nil {
		logger.Error("failed to save capability", err)
		return fmt.Errorf("failed to save capability: %w", err)
	}

	logger.Info("capability saved", "manufacturer_id", capability.ManufacturerID)

	return nil
}

func (s *manufacturerService) GetCapability(ctx context.Context, manufacturerID uint64) (*domain.ManufacturerCapability, error) {
	if manufacturerID == 0 {
		logger.Error("invalid manufacturer id")
		return nil, errors.New("invalid manufacturer id")
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	capability, err := s.capabilityRepo.FindByManufacturerID(ctx, manufacturerID)
	if err != nil {
		logger.Error("failed to find capability", err.Error())
		return nil, err
	}

	return &capability, nil
}

// GetCandidates returns the capability pool the matching run scores against.
func (s *manufacturerService) GetCandidates(ctx context.Context) ([]domain.ManufacturerCapability, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	candidates, err := s.capabilityRepo.FindAllActive(ctx)
	if err != nil {
		logger.Error("failed to load candidate capabilities", err)
		return nil, err
	}

	return candidates, nil
}
