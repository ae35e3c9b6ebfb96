package repositories

import (
	"context"

	"admin-restful/models"

	"gorm.io/gorm"
)

// DailySum is the order revenue of one calendar day.
type DailySum struct {
	Date string  `json:"date"`
	Sum  float64 `json:"sum"`
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	FindAll(ctx context.Context, page int, pageSize int) ([]models.Order, int64, error)
	DailySums(ctx context.Context) ([]DailySum, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("OrderItems").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindAll(ctx context.Context, page int, pageSize int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("OrderItems").Order("id").Scopes(paginate(page, pageSize)).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// DailySums aggregates price * quantity per order creation date.
func (r *orderRepository) DailySums(ctx context.Context) ([]DailySum, error) {
	day := "DATE_FORMAT(orders.created_at, '%Y-%m-%d')"
	if r.db.Dialector.Name() == "sqlite" {
		day = "substr(orders.created_at, 1, 10)"
	}

	var sums []DailySum
	err := r.db.WithContext(ctx).
		Table("orders").
		Select(day + " AS date, SUM(order_items.quantity * order_items.price) AS sum").
		Joins("JOIN order_items ON orders.id = order_items.order_id").
		Where("orders.deleted_at IS NULL AND order_items.deleted_at IS NULL").
		Group("date").
		Order("date").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	return sums, nil
}
