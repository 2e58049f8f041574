package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gudang/internal/models"
	"gudang/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// EventPublisher publishes domain events to a message broker. A nil
// publisher is tolerated; events are then skipped.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderService owns order records and the order state machine. It calls
// into the catalog to reserve and release stock; the catalog never calls
// back.
type OrderService struct {
	orderRepo repositories.OrderRepository
	catalog   *ProductService
	publisher EventPublisher
	validate  *validator.Validate
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, catalog *ProductService, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		catalog:   catalog,
		publisher: publisher,
		validate:  newValidator(),
	}
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// ListOrders retrieves a pagination window of orders, newest first.
func (s *OrderService) ListOrders(skip, limit int) ([]models.Order, error) {
	skip, limit = normalizeWindow(skip, limit)
	return s.orderRepo.List(skip, limit)
}

func (s *OrderService) validateItems(input models.OrderCreateInput) error {
	var messages []string
	if len(input.Items) == 0 {
		messages = append(messages, "items must contain at least one entry")
	}
	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.Tag() {
				case "gt":
					messages = append(messages, "quantity must be greater than 0")
				case "required":
					if fe.Field() == "product_id" {
						messages = append(messages, "product_id must not be empty")
					}
				}
			}
		}
	}
	if len(messages) > 0 {
		return models.NewValidationError(messages...)
	}
	return nil
}

// reserveAll reserves stock for every requested item, all or nothing.
// On any failure the reservations already made for this call are rolled
// back before the error is returned.
func (s *OrderService) reserveAll(items []models.OrderItemInput) error {
	for i, item := range items {
		if err := s.catalog.ReserveStock(item.ProductID, item.Quantity); err != nil {
			for j := i - 1; j >= 0; j-- {
				if releaseErr := s.catalog.ReleaseStock(items[j].ProductID, items[j].Quantity); releaseErr != nil {
					log.Printf("Warning: failed to roll back reservation for product %s: %v",
						items[j].ProductID, releaseErr)
				}
			}
			return err
		}
	}
	return nil
}

// releaseAll releases the reserved stock of every given item. Products
// deleted after the order was placed are skipped; there is nothing left
// to restore onto. All other failures are collected and returned.
func (s *OrderService) releaseAll(items []models.OrderItemInput) error {
	var errs []error
	for _, item := range items {
		if err := s.catalog.ReleaseStock(item.ProductID, item.Quantity); err != nil {
			var notFound *models.NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			errs = append(errs, fmt.Errorf("product %s: %w", item.ProductID, err))
		}
	}
	return errors.Join(errs...)
}

// rollbackReservations is releaseAll for compensation paths, where the
// original failure is what the caller needs to see. Release trouble is
// only logged.
func (s *OrderService) rollbackReservations(items []models.OrderItemInput) {
	if err := s.releaseAll(items); err != nil {
		log.Printf("Warning: failed to roll back reservations: %v", err)
	}
}

// snapshotItems builds order items from the requested lines, snapshotting
// each product's current price and name. Stock must already be reserved.
func (s *OrderService) snapshotItems(items []models.OrderItemInput) ([]models.OrderItem, error) {
	snapshots := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, err := s.catalog.GetProduct(item.ProductID)
		if err != nil {
			return nil, err
		}
		name := product.Name
		snapshots = append(snapshots, models.OrderItem{
			ProductID:       item.ProductID,
			QuantityOrdered: item.Quantity,
			PriceAtTime:     product.Price,
			ProductName:     &name,
		})
	}
	return snapshots, nil
}

// CreateOrder validates the requested items, reserves stock for all of
// them (all or nothing) and creates the order in Pending state.
func (s *OrderService) CreateOrder(input models.OrderCreateInput) (*models.Order, error) {
	if err := s.validateItems(input); err != nil {
		return nil, err
	}
	if err := s.reserveAll(input.Items); err != nil {
		return nil, err
	}

	items, err := s.snapshotItems(input.Items)
	if err != nil {
		s.rollbackReservations(input.Items)
		return nil, err
	}

	order := &models.Order{
		Status:    models.OrderStatusPending,
		Items:     items,
		CreatedAt: time.Now(),
	}
	if err := s.orderRepo.Create(order); err != nil {
		s.rollbackReservations(input.Items)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.publishEvent("order.created", order)
	return order, nil
}

// AddItems appends new items to a Pending order, reserving stock for all
// of them first (all or nothing). Existing items are left unchanged.
func (s *OrderService) AddItems(orderID string, input models.OrderCreateInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, &models.InvalidStateError{OrderID: orderID, Status: order.Status}
	}
	if err := s.validateItems(input); err != nil {
		return nil, err
	}
	if err := s.reserveAll(input.Items); err != nil {
		return nil, err
	}

	items, err := s.snapshotItems(input.Items)
	if err != nil {
		s.rollbackReservations(input.Items)
		return nil, err
	}
	// The repository re-checks the status under its own lock; losing a
	// race against a transition surfaces here and the reservations made
	// above are handed back.
	if err := s.orderRepo.AddItems(orderID, items); err != nil {
		s.rollbackReservations(input.Items)
		return nil, err
	}

	updated, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	s.publishEvent("order.items_added", updated)
	return updated, nil
}

// UpdateOrderStatus applies the order state machine. Transitioning a
// Pending order to Cancelled releases the reserved stock of every item;
// a Shipped order keeps its stock consumed and cannot change further.
func (s *OrderService) UpdateOrderStatus(orderID string, newStatus models.OrderStatus) (*models.Order, error) {
	if !newStatus.Valid() {
		return nil, models.NewValidationError("status must be one of Pending, Shipped, Cancelled")
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, &models.InvalidTransitionError{From: order.Status, To: newStatus}
	}

	// Compare-and-swap against the status just read; of two racing
	// transitions only one gets past this line.
	if err := s.orderRepo.UpdateStatus(orderID, order.Status, newStatus); err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if newStatus == models.OrderStatusCancelled {
		// Release from the post-transition read: items appended while
		// the cancel was in flight are included, and nothing can append
		// once the order is Cancelled.
		lines := make([]models.OrderItemInput, 0, len(updated.Items))
		for _, item := range updated.Items {
			lines = append(lines, models.OrderItemInput{ProductID: item.ProductID, Quantity: item.QuantityOrdered})
		}
		if err := s.releaseAll(lines); err != nil {
			return nil, fmt.Errorf("order %s cancelled but stock restoration incomplete: %w", orderID, err)
		}
	}
	s.publishEvent("order.status_updated", updated)
	return updated, nil
}

// CancelOrder is a convenience wrapper for transitioning an order to
// Cancelled.
func (s *OrderService) CancelOrder(orderID string) (*models.Order, error) {
	return s.UpdateOrderStatus(orderID, models.OrderStatusCancelled)
}

// publishEvent publishes an order event, best effort. Broker trouble is
// logged and never fails the operation.
func (s *OrderService) publishEvent(routingKey string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"order_id":   order.ID,
		"status":     order.Status,
		"total":      order.Total().StringFixed(2),
		"item_count": len(order.Items),
	})
	if err != nil {
		log.Printf("Warning: failed to marshal %s event for order %s: %v", routingKey, order.ID, err)
		return
	}
	if err := s.publisher.Publish("orders", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event for order %s: %v", routingKey, order.ID, err)
	}
}
