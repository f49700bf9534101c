package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ministry-shop/internal/domain"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

// SalesSummary aggregates order data for the admin dashboard.
type SalesSummary struct {
	TotalRevenue   int64             `json:"total_revenue"`
	OrderCount     int               `json:"order_count"`
	CountsByStatus map[string]int    `json:"counts_by_status"`
	TopProducts    []TopProductEntry `json:"top_products"`
}

// TopProductEntry is one row of the best-sellers aggregate.
type TopProductEntry struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitsSold   int       `json:"units_sold"`
	Revenue     int64     `json:"revenue"`
}

// OrderRepository defines the interface for order data access. Orders are
// inserted once by checkout and only their status fields change afterwards;
// there is no delete.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*domain.Order, error)
	List(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
	Summary(ctx context.Context) (*SalesSummary, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, profile_id, subtotal, shipping, tax, total, status, payment_status, payment_reference, shipping_name, shipping_email, shipping_phone, shipping_address, shipping_city, shipping_country, created_at, updated_at`

// Create inserts the order row and its item snapshots in one transaction.
// The transaction covers only the order and its lines; stock decrements run
// afterwards, outside it.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = tx.ExecContext(
		ctx,
		query,
		order.ID,
		order.OrderNumber,
		order.ProfileID,
		order.Subtotal,
		order.Shipping,
		order.Tax,
		order.Total,
		order.Status,
		order.PaymentStatus,
		order.PaymentReference,
		order.ShippingName,
		order.ShippingEmail,
		order.ShippingPhone,
		order.ShippingAddress,
		order.ShippingCity,
		order.ShippingCountry,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_image, unit_price, quantity, selected_size, selected_color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, item := range order.Items {
		_, err = tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.ProductImage,
			item.UnitPrice,
			item.Quantity,
			item.SelectedSize,
			item.SelectedColor,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// FindByID retrieves an order with its item snapshots
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListByProfile retrieves a customer's order history, newest first
func (r *orderRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE profile_id = $1
		ORDER BY created_at DESC
	`

	orders, err := r.queryOrders(ctx, query, profileID)
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		items, err := r.listItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

// List retrieves orders for the admin console with optional status filtering
func (r *orderRepository) List(ctx context.Context, status *domain.OrderStatus, page, pageSize int) ([]*domain.Order, int, error) {
	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if status != nil {
		whereClause = fmt.Sprintf("WHERE status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`
		SELECT `+orderColumns+`
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)
	args = append(args, pageSize, offset)

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus sets the fulfilment status
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return r.updateColumn(ctx, id, "status", string(status))
}

// UpdatePaymentStatus sets the payment status, tracked independently of
// fulfilment
func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	return r.updateColumn(ctx, id, "payment_status", string(status))
}

func (r *orderRepository) updateColumn(ctx context.Context, id uuid.UUID, column, value string) error {
	query := fmt.Sprintf(`UPDATE orders SET %s = $2, updated_at = NOW() WHERE id = $1`, column)

	result, err := r.db.ExecContext(ctx, query, id, value)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", column, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Summary aggregates revenue and order counts for the admin dashboard.
// Revenue counts paid orders only.
func (r *orderRepository) Summary(ctx context.Context) (*SalesSummary, error) {
	summary := &SalesSummary{CountsByStatus: map[string]int{}}

	revenueQuery := `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE payment_status = 'paid'
	`
	if err := r.db.QueryRowContext(ctx, revenueQuery).Scan(&summary.TotalRevenue, &summary.OrderCount); err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	statusQuery := `SELECT status, COUNT(*) FROM orders GROUP BY status`
	rows, err := r.db.QueryContext(ctx, statusQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.CountsByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	topQuery := `
		SELECT oi.product_id, oi.product_name, SUM(oi.quantity), SUM(oi.unit_price * oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.payment_status = 'paid'
		GROUP BY oi.product_id, oi.product_name
		ORDER BY SUM(oi.quantity) DESC
		LIMIT 10
	`
	topRows, err := r.db.QueryContext(ctx, topQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	defer topRows.Close()

	for topRows.Next() {
		var entry TopProductEntry
		if err := topRows.Scan(&entry.ProductID, &entry.ProductName, &entry.UnitsSold, &entry.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		summary.TopProducts = append(summary.TopProducts, entry)
	}
	if err := topRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return summary, nil
}

func (r *orderRepository) listItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, product_image, unit_price, quantity, selected_size, selected_color, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []*domain.OrderItem{}
	for rows.Next() {
		item := &domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductImage,
			&item.UnitPrice,
			&item.Quantity,
			&item.SelectedSize,
			&item.SelectedColor,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.ProfileID,
		&order.Subtotal,
		&order.Shipping,
		&order.Tax,
		&order.Total,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentReference,
		&order.ShippingName,
		&order.ShippingEmail,
		&order.ShippingPhone,
		&order.ShippingAddress,
		&order.ShippingCity,
		&order.ShippingCountry,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}
