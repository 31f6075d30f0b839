package repository

import (
	"context"

	"protonshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderUpdate lists the columns an admin action may change. Nil fields are
// left untouched; all set fields are written in one statement.
type OrderUpdate struct {
	Status       *model.OrderStatus
	ShippingCost *float64
	Total        *float64
}

func (u OrderUpdate) columns() map[string]any {
	cols := make(map[string]any, 3)
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.ShippingCost != nil {
		cols["shipping_cost"] = *u.ShippingCost
	}
	if u.Total != nil {
		cols["total"] = *u.Total
	}
	return cols
}

func (u OrderUpdate) Empty() bool {
	return u.Status == nil && u.ShippingCost == nil && u.Total == nil
}

// Apply copies the set fields onto o.
func (u OrderUpdate) Apply(o *model.Order) {
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.ShippingCost != nil {
		o.ShippingCost = *u.ShippingCost
	}
	if u.Total != nil {
		o.Total = *u.Total
	}
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindAll(ctx context.Context, ascending bool) ([]model.Order, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindItems(ctx context.Context, id uuid.UUID) ([]model.OrderItem, error)
	UpdateFields(ctx context.Context, id uuid.UUID, update OrderUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return translate(r.db.WithContext(ctx).Create(order).Error, "create order")
}

func (r *orderRepo) FindAll(ctx context.Context, ascending bool) ([]model.Order, error) {
	dir := "DESC"
	if ascending {
		dir = "ASC"
	}
	var orders []model.Order
	err := r.db.WithContext(ctx).Order("created_at " + dir).Find(&orders).Error
	return orders, translate(err, "find orders")
}

// FindByUser returns a customer's history newest first.
func (r *orderRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, translate(err, "find user orders")
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find order")
	}
	return &order, nil
}

// FindItems reads only the stored line items, fresh from the table.
func (r *orderRepo) FindItems(ctx context.Context, id uuid.UUID) ([]model.OrderItem, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Select("id", "items").First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find order items")
	}
	return order.Items, nil
}

func (r *orderRepo) UpdateFields(ctx context.Context, id uuid.UUID, update OrderUpdate) error {
	if update.Empty() {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(update.columns())
	if res.Error != nil {
		return translate(res.Error, "update order")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "update order")
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete order")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "delete order")
	}
	return nil
}
