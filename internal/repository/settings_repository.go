package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ministry-shop/internal/pricing"
)

var ErrSettingsNotFound = errors.New("store settings not found")

// SettingsRepository reads and writes the single store_settings row holding
// the pricing knobs.
type SettingsRepository interface {
	Get(ctx context.Context) (pricing.Settings, error)
	Update(ctx context.Context, settings pricing.Settings) error
}

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get reads the store settings row
func (r *settingsRepository) Get(ctx context.Context) (pricing.Settings, error) {
	query := `
		SELECT free_shipping_threshold, standard_shipping_rate, tax_rate
		FROM store_settings
		WHERE id = 1
	`

	var s pricing.Settings
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.FreeShippingThreshold,
		&s.StandardShippingRate,
		&s.TaxRate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.Settings{}, ErrSettingsNotFound
		}
		return pricing.Settings{}, fmt.Errorf("failed to get store settings: %w", err)
	}
	return s, nil
}

// Update overwrites the store settings row
func (r *settingsRepository) Update(ctx context.Context, settings pricing.Settings) error {
	query := `
		UPDATE store_settings
		SET free_shipping_threshold = $1, standard_shipping_rate = $2, tax_rate = $3, updated_at = NOW()
		WHERE id = 1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		settings.FreeShippingThreshold,
		settings.StandardShippingRate,
		settings.TaxRate,
	)
	if err != nil {
		return fmt.Errorf("failed to update store settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSettingsNotFound
	}
	return nil
}
