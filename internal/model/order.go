package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pendiente"
	StatusConfirmed OrderStatus = "Confirmado"
	StatusShipped   OrderStatus = "Enviado"
	StatusCompleted OrderStatus = "Completado"
	StatusCancelled OrderStatus = "Cancelado"
)

// OrderStatuses lists the lifecycle in display order.
var OrderStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusCompleted, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// OrderItem is a denormalized snapshot of a product at checkout time.
// Price is the unit price actually charged.
type OrderItem struct {
	ProductID string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// Qty treats a missing quantity (legacy rows) as one unit.
func (i OrderItem) Qty() int {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Qty())
}

type Order struct {
	ID                   uuid.UUID                      `gorm:"type:uuid;primary_key;" json:"id"`
	OrderCode            string                         `gorm:"type:varchar(12);index" json:"order_code"`
	CustomerName         string                         `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone        string                         `gorm:"type:varchar(40)" json:"customer_phone"`
	CustomerAddress      string                         `gorm:"type:text" json:"customer_address"`
	CustomerMunicipio    string                         `gorm:"type:varchar(120)" json:"customer_municipio"`
	CustomerDepartamento string                         `gorm:"type:varchar(120)" json:"customer_departamento"`
	Items                datatypes.JSONSlice[OrderItem] `gorm:"type:jsonb" json:"items"`
	Status               OrderStatus                    `gorm:"type:varchar(20);not null;default:'Pendiente'" json:"status"`
	ShippingCost         float64                        `gorm:"type:numeric;not null;default:0" json:"shipping_cost"`
	Total                float64                        `gorm:"type:numeric;not null;default:0" json:"total"`
	UserID               *uuid.UUID                     `gorm:"type:uuid;index" json:"user_id"`
	CreatedAt            time.Time                      `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time                      `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}

// Cancelled reports whether the order is excluded from sales figures.
func (o Order) Cancelled() bool {
	return o.Status == StatusCancelled
}
