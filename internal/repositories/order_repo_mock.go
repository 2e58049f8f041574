package repositories

import (
	"sort"
	"sync"
	"time"

	"gudang/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

func cloneOrder(order models.Order) models.Order {
	items := make([]models.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}

// Create adds a new order with all of its items.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "order", ID: id}
	}
	clone := cloneOrder(order)
	return &clone, nil
}

// List returns a pagination window of orders, newest first.
func (r *MockOrderRepository) List(skip, limit int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		all = append(all, cloneOrder(order))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if skip >= len(all) {
		return []models.Order{}, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

// UpdateStatus moves an order from one status to another. The swap only
// happens while the order still holds the from status, so racing
// transitions cannot both win.
func (r *MockOrderRepository) UpdateStatus(id string, from, to models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return &models.NotFoundError{Resource: "order", ID: id}
	}
	if order.Status != from {
		return &models.InvalidTransitionError{From: order.Status, To: to}
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// AddItems appends new items to an existing order. The status check holds
// the same lock as the append, so items cannot land on an order a
// concurrent transition just closed.
func (r *MockOrderRepository) AddItems(orderID string, items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return &models.NotFoundError{Resource: "order", ID: orderID}
	}
	if order.Status != models.OrderStatusPending {
		return &models.InvalidStateError{OrderID: orderID, Status: order.Status}
	}
	order = cloneOrder(order)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		items[i].OrderID = orderID
		items[i].Position = len(order.Items)
		order.Items = append(order.Items, items[i])
	}
	order.UpdatedAt = time.Now()
	r.orders[orderID] = order
	return nil
}
