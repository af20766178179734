package domain

import "time"

type Orders struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CustomerID  uint64    `gorm:"column:customer_id" json:"customer_id"`
	Title       string    `gorm:"column:title" json:"title"`
	Quantity    int       `gorm:"column:quantity" json:"quantity"`
	TargetPrice float64   `gorm:"column:target_price" json:"target_price"`
	OrderStatus string    `gorm:"column:order_status" json:"order_status"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Orders) TableName() string {
	return "orders"
}
