package repositories

import (
	"gudang/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// never physically deleted; cancellation is a status change.
//
// UpdateStatus is a compare-and-swap: the write succeeds only while the
// order still holds the from status, so of two racing transitions exactly
// one wins. AddItems checks the order is still Pending inside the same
// critical section as the append, so items can never land on an order a
// concurrent transition just closed.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	List(skip, limit int) ([]models.Order, error)
	UpdateStatus(id string, from, to models.OrderStatus) error
	AddItems(orderID string, items []models.OrderItem) error
}
