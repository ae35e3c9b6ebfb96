package services

import (
	"context"
	"errors"
	"fmt"

	"admin-restful/models"
	"admin-restful/repositories"

	"gorm.io/gorm"
)

// OrderView is an order as the API presents it, with the computed fields.
type OrderView struct {
	models.Order
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

func NewOrderView(order models.Order) OrderView {
	return OrderView{Order: order, Name: order.Name(), Total: order.Total()}
}

// OrderService is read-only; orders are created by the storefront.
type OrderService interface {
	GetOrder(ctx context.Context, id uint) (*OrderView, error)
	ListOrders(ctx context.Context, page int, pageSize int) ([]OrderView, int64, error)
	Chart(ctx context.Context) ([]repositories.DailySum, error)
}

type orderService struct {
	repo repositories.OrderRepository
}

func NewOrderService(repo repositories.OrderRepository) OrderService {
	return &orderService{repo: repo}
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*OrderView, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("order", id)
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	view := NewOrderView(*order)
	return &view, nil
}

func (s *orderService) ListOrders(ctx context.Context, page int, pageSize int) ([]OrderView, int64, error) {
	orders, total, err := s.repo.FindAll(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, NewOrderView(o))
	}
	return views, total, nil
}

// Chart returns revenue per day, oldest first.
func (s *orderService) Chart(ctx context.Context) ([]repositories.DailySum, error) {
	sums, err := s.repo.DailySums(ctx)
	if err != nil {
		return nil, fmt.Errorf("order chart: %w", err)
	}
	if sums == nil {
		sums = []repositories.DailySum{}
	}
	return sums, nil
}
