package repositories

import (
	"errors"
	"fmt"

	"gudang/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// Deletes are soft deletes; reads exclude soft-deleted rows.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// withRowLock adds a FOR UPDATE clause where the dialect supports it.
// SQLite does not, but its single-writer transactions already serialize
// concurrent reservations.
func withRowLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Resource: "product", ID: id}
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// List retrieves a pagination window of products ordered by ID ascending,
// along with the total count of live products.
func (r *GORMProductRepository) List(skip, limit int) ([]models.Product, int64, error) {
	var total int64
	if err := r.db.Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := r.db.Order("id ASC").Offset(skip).Limit(limit).Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// Update persists changes to an existing product.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Resource: "product", ID: product.ID}
	}
	return nil
}

// Delete soft-deletes a product by its ID.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Resource: "product", ID: id}
	}
	return nil
}

// BulkDelete soft-deletes all listed products that exist and returns
// how many were actually deleted. Unknown IDs are skipped, not errors.
func (r *GORMProductRepository) BulkDelete(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Delete(&models.Product{}, "id IN ?", ids)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bulk delete products: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ReserveStock decrements stock_quantity by quantity inside a transaction
// holding a row lock, so concurrent reservations against the same product
// serialize and can never drive stock below zero.
func (r *GORMProductRepository) ReserveStock(id string, quantity int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := withRowLock(tx).First(&product, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{Resource: "product", ID: id}
			}
			return fmt.Errorf("failed to lock product %s: %w", id, err)
		}

		if product.StockQuantity < quantity {
			return &models.InsufficientStockError{
				ProductName: product.Name,
				Available:   product.StockQuantity,
				Requested:   quantity,
			}
		}

		err = tx.Model(&product).UpdateColumn("stock_quantity", product.StockQuantity-quantity).Error
		if err != nil {
			return fmt.Errorf("failed to reserve stock for product %s: %w", id, err)
		}
		return nil
	})
}

// ReleaseStock increments stock_quantity back by quantity. The lookup is
// unscoped so stock released for an order still lands on a product that
// was soft-deleted after the order was placed.
func (r *GORMProductRepository) ReleaseStock(id string, quantity int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := withRowLock(tx.Unscoped()).First(&product, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{Resource: "product", ID: id}
			}
			return fmt.Errorf("failed to lock product %s: %w", id, err)
		}

		err = tx.Unscoped().Model(&product).UpdateColumn("stock_quantity", product.StockQuantity+quantity).Error
		if err != nil {
			return fmt.Errorf("failed to release stock for product %s: %w", id, err)
		}
		return nil
	})
}
