package repositories

import (
	"sort"
	"sync"

	"gudang/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// The mutex serializes the read-check-decrement of stock, giving the same
// reservation guarantee the GORM implementation gets from row locks.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "product", ID: id}
	}
	return &product, nil
}

// List returns a pagination window of products ordered by ID ascending,
// along with the total count.
func (r *MockProductRepository) List(skip, limit int) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if skip >= len(all) {
		return []models.Product{}, total, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], total, nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return &models.NotFoundError{Resource: "product", ID: product.ID}
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return &models.NotFoundError{Resource: "product", ID: id}
	}
	delete(r.products, id)
	return nil
}

// BulkDelete removes all listed products that exist and returns the count
// actually deleted; unknown IDs are skipped.
func (r *MockProductRepository) BulkDelete(ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := r.products[id]; ok {
			delete(r.products, id)
			deleted++
		}
	}
	return deleted, nil
}

// ReserveStock atomically checks and decrements a product's stock.
func (r *MockProductRepository) ReserveStock(id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return &models.NotFoundError{Resource: "product", ID: id}
	}
	if product.StockQuantity < quantity {
		return &models.InsufficientStockError{
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Requested:   quantity,
		}
	}
	product.StockQuantity -= quantity
	r.products[id] = product
	return nil
}

// ReleaseStock atomically increments a product's stock back.
func (r *MockProductRepository) ReleaseStock(id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return &models.NotFoundError{Resource: "product", ID: id}
	}
	product.StockQuantity += quantity
	r.products[id] = product
	return nil
}
