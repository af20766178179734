package postgres

import (
	"context"
	"errors"
	"fmt"
	"makerLink/domain"

	"gorm.io/gorm"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

func (r *OrdersRepository) CreateOrder(ctx context.Context, data domain.Orders) (domain.Orders, error) {
	if err := ctx.Err(); err != nil {
		return domain.Orders{}, fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Create(&data).Error
	if err != nil {
		return domain.Orders{}, err
	}

	return data, nil
}

func (r *OrdersRepository) GetAllOrders(ctx context.Context) ([]domain.Orders, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var orders []domain.Orders
	err := r.DB.WithContext(ctx).Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrdersRepository) GetOrder(ctx context.Context, orderID uint64) (domain.Orders, error) {
	if err := ctx.Err(); err != nil {
		return domain.Orders{}, fmt.Errorf("context error: %w", err)
	}

	var order domain.Orders
	err := r.DB.WithContext(ctx).Where("id=?", orderID).First(&order).Error
	if err != nil {
		return domain.Orders{}, err
	}

	return order, nil
}

func (r *OrdersRepository) UpdateOrder(ctx context.Context, data domain.Orders) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := r.DB.WithContext(ctx).Where("id=?", data.ID).Updates(&data)
	if row.RowsAffected == 0 {
		return errors.New("order_id not found")
	}
	if err := row.Error; err != nil {
		return err
	}

	return nil
}

func (r *OrdersRepository) DeleteOrder(ctx context.Context, orderID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := r.DB.WithContext(ctx).Where("id=?", orderID).Delete(&domain.Orders{})
	if row.RowsAffected == 0 {
		return errors.New("order_id not found")
	}
	if err := row.Error; err != nil {
		return err
	}

	return nil
}
