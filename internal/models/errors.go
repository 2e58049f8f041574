package models

import (
	"fmt"
	"strings"
)

// ValidationError reports one or more malformed input fields. Messages
// are collected so the caller can surface every failure at once.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// NotFoundError reports that a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// InsufficientStockError reports a reservation exceeding available stock.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}

// InvalidStateError reports an item mutation against a non-Pending order.
type InvalidStateError struct {
	OrderID string
	Status  OrderStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order %s is %s; items can only be added while Pending", e.OrderID, e.Status)
}

// InvalidTransitionError reports a disallowed order status change.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}
