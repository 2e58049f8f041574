package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status change s -> next is allowed.
// Pending may move to Shipped or Cancelled; Shipped and Cancelled are
// terminal. Same-status updates are not transitions and are rejected.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderStatusPending {
		return false
	}
	return next == OrderStatusShipped || next == OrderStatusCancelled
}

// OrderItem is a single line item of an order. PriceAtTime and ProductName
// are snapshots taken when the item was added; they never track later
// changes (or deletion) of the product.
type OrderItem struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string          `json:"-" gorm:"index;not null;type:varchar(36)"`
	ProductID       string          `json:"product_id" gorm:"index;not null;type:varchar(36)"`
	Position        int             `json:"-" gorm:"not null"`
	QuantityOrdered int             `json:"quantity_ordered" gorm:"not null"`
	PriceAtTime     decimal.Decimal `json:"price_at_time" gorm:"not null;type:decimal(10,2)"`
	ProductName     *string         `json:"product_name"`
	CreatedAt       time.Time       `json:"-"`
}

// Order represents a customer order. Items keep their insertion order.
type Order struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Status    OrderStatus `json:"status" gorm:"not null;type:varchar(20)"`
	Items     []OrderItem `json:"order_items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"-"`
}

// Total derives the order value from its current items. It is never
// stored; the snapshotted item prices make it independent of later
// product price changes.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.PriceAtTime.Mul(decimal.NewFromInt(int64(item.QuantityOrdered))))
	}
	return total
}

// OrderItemInput is one requested line of createOrder/addItems.
type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// OrderCreateInput is the createOrder request body.
type OrderCreateInput struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderStatusUpdateInput is the updateStatus request body.
type OrderStatusUpdateInput struct {
	Status OrderStatus `json:"status"`
}

// OrderItemResponse is the wire shape of an order item.
type OrderItemResponse struct {
	ID              string  `json:"id"`
	ProductID       string  `json:"product_id"`
	QuantityOrdered int     `json:"quantity_ordered"`
	PriceAtTime     string  `json:"price_at_time"`
	ProductName     *string `json:"product_name"`
}

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	ID         string              `json:"id"`
	CreatedAt  time.Time           `json:"created_at"`
	Status     OrderStatus         `json:"status"`
	OrderItems []OrderItemResponse `json:"order_items"`
}

// Response converts the order to its wire shape.
func (o *Order) Response() OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			QuantityOrdered: item.QuantityOrdered,
			PriceAtTime:     item.PriceAtTime.StringFixed(2),
			ProductName:     item.ProductName,
		})
	}
	return OrderResponse{
		ID:         o.ID,
		CreatedAt:  o.CreatedAt,
		Status:     o.Status,
		OrderItems: items,
	}
}
