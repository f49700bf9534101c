package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ministry-shop/internal/domain"

	"github.com/google/uuid"
)

var ErrAddressNotFound = errors.New("address not found")

// AddressRepository defines the interface for saved shipping addresses
type AddressRepository interface {
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, profileID, id uuid.UUID) error
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*domain.Address, error)
}

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new instance of AddressRepository
func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

const addressColumns = `id, profile_id, name, phone, line1, line2, city, country, is_default, created_at`

// Create inserts a saved address
func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	query := `
		INSERT INTO addresses (` + addressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		address.ID,
		address.ProfileID,
		address.Name,
		address.Phone,
		address.Line1,
		address.Line2,
		address.City,
		address.Country,
		address.IsDefault,
		address.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

// Update modifies a saved address; ownership is part of the predicate
func (r *addressRepository) Update(ctx context.Context, address *domain.Address) error {
	query := `
		UPDATE addresses
		SET name = $3, phone = $4, line1 = $5, line2 = $6, city = $7, country = $8, is_default = $9
		WHERE id = $1 AND profile_id = $2
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		address.ID,
		address.ProfileID,
		address.Name,
		address.Phone,
		address.Line1,
		address.Line2,
		address.City,
		address.Country,
		address.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

// Delete removes a saved address
func (r *addressRepository) Delete(ctx context.Context, profileID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1 AND profile_id = $2`, id, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

// ListByProfile retrieves a customer's saved addresses, default first
func (r *addressRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*domain.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE profile_id = $1
		ORDER BY is_default DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*domain.Address{}
	for rows.Next() {
		address := &domain.Address{}
		err := rows.Scan(
			&address.ID,
			&address.ProfileID,
			&address.Name,
			&address.Phone,
			&address.Line1,
			&address.Line2,
			&address.City,
			&address.Country,
			&address.IsDefault,
			&address.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}
	return addresses, nil
}
