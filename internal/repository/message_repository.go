package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ministry-shop/internal/domain"

	"github.com/google/uuid"
)

var ErrMessageNotFound = errors.New("contact message not found")

// MessageRepository defines the interface for contact message data access
type MessageRepository interface {
	Create(ctx context.Context, message *domain.ContactMessage) error
	List(ctx context.Context, page, pageSize int) ([]*domain.ContactMessage, int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new instance of MessageRepository
func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a contact form submission
func (r *messageRepository) Create(ctx context.Context, message *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		message.ID,
		message.Name,
		message.Email,
		message.Subject,
		message.Body,
		message.Read,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}

// List pages through messages for the admin inbox, unread first
func (r *messageRepository) List(ctx context.Context, page, pageSize int) ([]*domain.ContactMessage, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contact messages: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, name, email, subject, body, read, created_at
		FROM contact_messages
		ORDER BY read ASC, created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	messages := []*domain.ContactMessage{}
	for rows.Next() {
		message := &domain.ContactMessage{}
		err := rows.Scan(
			&message.ID,
			&message.Name,
			&message.Email,
			&message.Subject,
			&message.Body,
			&message.Read,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating contact messages: %w", err)
	}

	return messages, total, nil
}

// MarkRead flags a message as handled
func (r *messageRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE contact_messages SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
