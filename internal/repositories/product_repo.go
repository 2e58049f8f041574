package repositories

import (
	"gudang/internal/models"
)

// ProductRepository defines the interface for product data access.
// ReserveStock and ReleaseStock must be atomic with respect to concurrent
// calls against the same product: no caller may observe a stock value
// mid-update from another in-flight reservation.
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id string) (*models.Product, error)
	List(skip, limit int) ([]models.Product, int64, error)
	Update(product *models.Product) error
	Delete(id string) error
	BulkDelete(ids []string) (int64, error)
	ReserveStock(id string, quantity int) error
	ReleaseStock(id string, quantity int) error
}
