package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog. Prices are stored in minor
// currency units.
type Product struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	Price          int64     `json:"price" db:"price"`
	CompareAtPrice *int64    `json:"compare_at_price,omitempty" db:"compare_at_price"`
	CategoryID     uuid.UUID `json:"category_id" db:"category_id"`
	SKU            string    `json:"sku" db:"sku"`
	Images         []string  `json:"images" db:"images"`
	Stock          int       `json:"stock" db:"stock"`
	Sizes          []string  `json:"sizes,omitempty" db:"sizes"`
	Colors         []string  `json:"colors,omitempty" db:"colors"`
	Variants       []*ProductVariant `json:"variants,omitempty" db:"-"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// HasVariants reports whether stock is tracked per variant rather than on the
// product row itself.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// ProductVariant is a (size, color) combination of a product with its own
// stock counter. The pair is unique per product.
type ProductVariant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Size      string    `json:"size" db:"size"`
	Color     string    `json:"color" db:"color"`
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
