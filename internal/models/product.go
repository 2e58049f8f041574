package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the catalog.
// Deleting a product is a soft delete: existing order items keep their
// snapshots and the row stays around with DeletedAt set.
type Product struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string          `json:"name" gorm:"not null;type:varchar(255)"`
	Price         decimal.Decimal `json:"price" gorm:"not null;type:decimal(10,2)"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`
	CreatedAt     time.Time       `json:"-"`
	UpdatedAt     time.Time       `json:"-"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}

// ProductCreateInput carries the fields accepted when creating a product.
type ProductCreateInput struct {
	Name          string          `json:"name" validate:"required,min=1,max=255"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
}

// ProductUpdateInput carries a partial field set for updating a product.
// Nil fields are left untouched.
type ProductUpdateInput struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
}

// ProductResponse is the wire shape of a product. Field names are the
// stable contract; price is a fixed two-digit decimal string.
type ProductResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	StockQuantity int    `json:"stock_quantity"`
}

// ProductListResponse is the paginated product listing envelope.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
}

// Response converts the product to its wire shape.
func (p *Product) Response() ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
	}
}
