package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrEmptyCart    = errors.New("cart is empty")
)

// Line is one cart entry, keyed by (product, size, color). Product fields
// are captured at add time so the checkout snapshot matches what the
// customer saw.
type Line struct {
	ID            string     `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	VariantID     *uuid.UUID `json:"variant_id,omitempty"`
	ProductName   string     `json:"product_name"`
	ProductImage  string     `json:"product_image"`
	UnitPrice     int64      `json:"unit_price"`
	Quantity      int        `json:"quantity"`
	SelectedSize  string     `json:"selected_size"`
	SelectedColor string     `json:"selected_color"`
}

// LineID derives the merge key for a (product, size, color) selection.
func LineID(productID uuid.UUID, size, color string) string {
	return fmt.Sprintf("%s:%s:%s", productID, size, color)
}

// Shipping is the staged checkout shipping form.
type Shipping struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Store keeps carts and staged shipping details in Redis. Carts are
// ephemeral: the TTL is refreshed on every write and abandoned carts simply
// expire without ever reaching the relational store.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func cartKey(profileID uuid.UUID) string     { return "cart:" + profileID.String() }
func shippingKey(profileID uuid.UUID) string { return "checkout:shipping:" + profileID.String() }

// Get returns the current cart lines, empty when no cart exists.
func (s *Store) Get(ctx context.Context, profileID uuid.UUID) ([]Line, error) {
	data, err := s.rdb.Get(ctx, cartKey(profileID)).Bytes()
	if err == redis.Nil {
		return []Line{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return lines, nil
}

// AddItem merges the quantity into an existing line with the same
// (product, size, color) selection, or appends a new line.
func (s *Store) AddItem(ctx context.Context, profileID uuid.UUID, line Line) ([]Line, error) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	line.ID = LineID(line.ProductID, line.SelectedSize, line.SelectedColor)

	lines, err := s.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range lines {
		if lines[i].ID == line.ID {
			lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}

	if err := s.save(ctx, profileID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateQuantity sets a line's quantity; a value below 1 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, profileID uuid.UUID, lineID string, quantity int) ([]Line, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, profileID, lineID)
	}

	lines, err := s.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = quantity
			if err := s.save(ctx, profileID, lines); err != nil {
				return nil, err
			}
			return lines, nil
		}
	}
	return nil, ErrLineNotFound
}

// RemoveItem deletes a line from the cart.
func (s *Store) RemoveItem(ctx context.Context, profileID uuid.UUID, lineID string) ([]Line, error) {
	lines, err := s.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	kept := lines[:0]
	found := false
	for _, l := range lines {
		if l.ID == lineID {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return nil, ErrLineNotFound
	}

	if err := s.save(ctx, profileID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// Clear drops the cart entirely.
func (s *Store) Clear(ctx context.Context, profileID uuid.UUID) error {
	if err := s.rdb.Del(ctx, cartKey(profileID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// StageShipping stores the validated checkout shipping form alongside the
// cart, gating the payment step.
func (s *Store) StageShipping(ctx context.Context, profileID uuid.UUID, sh Shipping) error {
	data, err := json.Marshal(sh)
	if err != nil {
		return fmt.Errorf("failed to encode shipping details: %w", err)
	}
	if err := s.rdb.Set(ctx, shippingKey(profileID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to stage shipping details: %w", err)
	}
	return nil
}

// StagedShipping returns the staged shipping form, or ok=false when the
// shipping step has not been completed.
func (s *Store) StagedShipping(ctx context.Context, profileID uuid.UUID) (Shipping, bool, error) {
	data, err := s.rdb.Get(ctx, shippingKey(profileID)).Bytes()
	if err == redis.Nil {
		return Shipping{}, false, nil
	}
	if err != nil {
		return Shipping{}, false, fmt.Errorf("failed to load shipping details: %w", err)
	}

	var sh Shipping
	if err := json.Unmarshal(data, &sh); err != nil {
		return Shipping{}, false, fmt.Errorf("failed to decode shipping details: %w", err)
	}
	return sh, true, nil
}

// ClearShipping drops the staged shipping form.
func (s *Store) ClearShipping(ctx context.Context, profileID uuid.UUID) error {
	if err := s.rdb.Del(ctx, shippingKey(profileID)).Err(); err != nil {
		return fmt.Errorf("failed to clear shipping details: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, profileID uuid.UUID, lines []Line) error {
	if len(lines) == 0 {
		return s.Clear(ctx, profileID)
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.rdb.Set(ctx, cartKey(profileID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
