package services

import (
	"fmt"
	"reflect"
	"strings"

	"gudang/internal/models"
	"gudang/internal/repositories"

	"github.com/go-playground/validator/v10"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// newValidator builds the validator shared by the services, reporting
// field names by their json tag so messages match the wire contract.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// validationMessages flattens validator field errors into user-facing
// messages, one per failed field.
func validationMessages(errs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required", "min":
			messages = append(messages, fmt.Sprintf("%s must not be empty", fe.Field()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must not be negative", fe.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return messages
}

// normalizeWindow clamps a pagination window to sane bounds.
func normalizeWindow(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return skip, limit
}

// ProductService owns product records and their stock invariants.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: newValidator(),
	}
}

// CreateProduct validates the input and creates a new product.
func (s *ProductService) CreateProduct(input models.ProductCreateInput) (*models.Product, error) {
	var messages []string
	if err := s.validate.Struct(input); err != nil {
		messages = validationMessages(err.(validator.ValidationErrors))
	}
	if !input.Price.IsPositive() {
		messages = append(messages, "price must be a positive decimal")
	}
	if len(messages) > 0 {
		return nil, models.NewValidationError(messages...)
	}

	product := &models.Product{
		Name:          input.Name,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// ListProducts retrieves a pagination window of products ordered by ID
// ascending, together with the total count.
func (s *ProductService) ListProducts(skip, limit int) ([]models.Product, int64, int, int, error) {
	skip, limit = normalizeWindow(skip, limit)
	products, total, err := s.repo.List(skip, limit)
	if err != nil {
		return nil, 0, skip, limit, err
	}
	return products, total, skip, limit, nil
}

// UpdateProduct applies a partial field update to an existing product.
// Only supplied fields change; each changed field is validated with the
// same rules as creation.
func (s *ProductService) UpdateProduct(id string, input models.ProductUpdateInput) (*models.Product, error) {
	var messages []string
	if err := s.validate.Struct(input); err != nil {
		messages = validationMessages(err.(validator.ValidationErrors))
	}
	if input.Price != nil && !input.Price.IsPositive() {
		messages = append(messages, "price must be a positive decimal")
	}
	if len(messages) > 0 {
		return nil, models.NewValidationError(messages...)
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by its ID. Order items referencing the
// product keep their snapshots.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// BulkDeleteProducts removes all listed products that exist and returns
// the count actually deleted. IDs that do not exist are silently skipped.
func (s *ProductService) BulkDeleteProducts(ids []string) (int64, error) {
	return s.repo.BulkDelete(ids)
}

// ReserveStock decrements a product's stock for an order. The repository
// guarantees the read-check-decrement is atomic per product.
func (s *ProductService) ReserveStock(productID string, quantity int) error {
	return s.repo.ReserveStock(productID, quantity)
}

// ReleaseStock restores stock previously reserved for an order.
func (s *ProductService) ReleaseStock(productID string, quantity int) error {
	return s.repo.ReleaseStock(productID, quantity)
}
