package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks fulfilment progress.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus tracks the money side independently of fulfilment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order is created exactly once per successful payment reference and mutated
// only by admin status changes thereafter. All amounts are minor units and
// total = subtotal + shipping + tax.
type Order struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	OrderNumber      string        `json:"order_number" db:"order_number"`
	ProfileID        uuid.UUID     `json:"profile_id" db:"profile_id"`
	Subtotal         int64         `json:"subtotal" db:"subtotal"`
	Shipping         int64         `json:"shipping" db:"shipping"`
	Tax              int64         `json:"tax" db:"tax"`
	Total            int64         `json:"total" db:"total"`
	Status           OrderStatus   `json:"status" db:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentReference string        `json:"payment_reference" db:"payment_reference"`
	ShippingName     string        `json:"shipping_name" db:"shipping_name"`
	ShippingEmail    string        `json:"shipping_email" db:"shipping_email"`
	ShippingPhone    string        `json:"shipping_phone" db:"shipping_phone"`
	ShippingAddress  string        `json:"shipping_address" db:"shipping_address"`
	ShippingCity     string        `json:"shipping_city" db:"shipping_city"`
	ShippingCountry  string        `json:"shipping_country" db:"shipping_country"`
	Items            []*OrderItem  `json:"items,omitempty" db:"-"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// OrderItem is an immutable snapshot of the product at time of purchase, so
// later catalog edits never alter historical orders.
type OrderItem struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OrderID       uuid.UUID `json:"order_id" db:"order_id"`
	ProductID     uuid.UUID `json:"product_id" db:"product_id"`
	ProductName   string    `json:"product_name" db:"product_name"`
	ProductImage  string    `json:"product_image" db:"product_image"`
	UnitPrice     int64     `json:"unit_price" db:"unit_price"`
	Quantity      int       `json:"quantity" db:"quantity"`
	SelectedSize  string    `json:"selected_size" db:"selected_size"`
	SelectedColor string    `json:"selected_color" db:"selected_color"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
