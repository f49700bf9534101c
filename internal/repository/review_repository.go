package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ministry-shop/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("customer has already reviewed this product")
)

// ReviewRepository defines the interface for product review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.ProductReview) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductReview, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.ProductReview, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review; the (product, customer) pair is unique
func (r *reviewRepository) Create(ctx context.Context, review *domain.ProductReview) error {
	query := `
		INSERT INTO product_reviews (id, product_id, profile_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		review.ID,
		review.ProductID,
		review.ProfileID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrReviewAlreadyExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// ListByProduct retrieves reviews for one product, newest first
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductReview, error) {
	query := `
		SELECT id, product_id, profile_id, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`

	return r.queryReviews(ctx, query, productID)
}

// List pages through all reviews for admin moderation
func (r *reviewRepository) List(ctx context.Context, page, pageSize int) ([]*domain.ProductReview, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM product_reviews`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, product_id, profile_id, rating, comment, created_at
		FROM product_reviews
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	reviews, err := r.queryReviews(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// Delete removes a review (admin moderation)
func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM product_reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) queryReviews(ctx context.Context, query string, args ...interface{}) ([]*domain.ProductReview, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.ProductReview{}
	for rows.Next() {
		review := &domain.ProductReview{}
		err := rows.Scan(
			&review.ID,
			&review.ProductID,
			&review.ProfileID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}
