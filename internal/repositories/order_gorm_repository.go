package repositories

import (
	"errors"
	"fmt"

	"gudang/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func itemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create persists a new order together with all of its items.
func (r *GORMOrderRepository) Create(order *models.Order) error {
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
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID with items in insertion order.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items", itemsByPosition).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "order", ID: id}
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// List retrieves a pagination window of orders, newest first.
func (r *GORMOrderRepository) List(skip, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items", itemsByPosition).
		Order("created_at DESC").Offset(skip).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another. The UPDATE is
// guarded by the expected current status, so a transition that raced with
// another one loses with RowsAffected 0 instead of overwriting it.
func (r *GORMOrderRepository) UpdateStatus(id string, from, to models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var order models.Order
		err := r.db.First(&order, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.NotFoundError{Resource: "order", ID: id}
		}
		if err != nil {
			return fmt.Errorf("failed to get order by ID %s: %w", id, err)
		}
		return &models.InvalidTransitionError{From: order.Status, To: to}
	}
	return nil
}

// AddItems appends new items to an existing order, preserving the order's
// existing items unchanged. The order row is locked and re-checked inside
// the transaction, so the append cannot interleave with a status change.
func (r *GORMOrderRepository) AddItems(orderID string, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := withRowLock(tx).First(&order, "id = ?", orderID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{Resource: "order", ID: orderID}
			}
			return fmt.Errorf("failed to lock order %s: %w", orderID, err)
		}
		if order.Status != models.OrderStatusPending {
			return &models.InvalidStateError{OrderID: orderID, Status: order.Status}
		}

		var maxPos int
		err = tx.Model(&models.OrderItem{}).
			Where("order_id = ?", orderID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPos).Error
		if err != nil {
			return fmt.Errorf("failed to read order item positions: %w", err)
		}
		for i := range items {
			if items[i].ID == "" {
				items[i].ID = uuid.New().String()
			}
			items[i].OrderID = orderID
			items[i].Position = maxPos + 1 + i
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to add order items: %w", err)
		}
		return nil
	})
}
