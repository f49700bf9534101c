package service

import (
	"context"
	"fmt"
	"time"

	"ministry-shop/internal/domain"
	"ministry-shop/internal/repository"

	"github.com/google/uuid"
)

// AddressInput carries the fields of a saved shipping address.
type AddressInput struct {
	Name    string
	Phone   string
	Line1   string
	Line2   string
	City    string
	Country string
}

// AccountService covers the customer-side account features that sit next to
// orders: saved addresses, the wishlist and the public contact form.
type AccountService interface {
	ListAddresses(ctx context.Context, profileID uuid.UUID) ([]*domain.Address, error)
	CreateAddress(ctx context.Context, profileID uuid.UUID, input AddressInput) (*domain.Address, error)
	UpdateAddress(ctx context.Context, profileID, addressID uuid.UUID, input AddressInput) (*domain.Address, error)
	DeleteAddress(ctx context.Context, profileID, addressID uuid.UUID) error

	ListWishlist(ctx context.Context, profileID uuid.UUID) ([]*domain.WishlistItem, error)
	AddToWishlist(ctx context.Context, profileID, productID uuid.UUID) error
	RemoveFromWishlist(ctx context.Context, profileID, productID uuid.UUID) error

	SubmitContactMessage(ctx context.Context, name, email, subject, body string) (*domain.ContactMessage, error)
	ListContactMessages(ctx context.Context, page, pageSize int) ([]*domain.ContactMessage, int, error)
	MarkMessageRead(ctx context.Context, id uuid.UUID) error
}

type accountService struct {
	addressRepo  repository.AddressRepository
	wishlistRepo repository.WishlistRepository
	messageRepo  repository.MessageRepository
	productRepo  repository.ProductRepository
}

// NewAccountService creates a new instance of AccountService
func NewAccountService(
	addressRepo repository.AddressRepository,
	wishlistRepo repository.WishlistRepository,
	messageRepo repository.MessageRepository,
	productRepo repository.ProductRepository,
) AccountService {
	return &accountService{
		addressRepo:  addressRepo,
		wishlistRepo: wishlistRepo,
		messageRepo:  messageRepo,
		productRepo:  productRepo,
	}
}

func (s *accountService) ListAddresses(ctx context.Context, profileID uuid.UUID) ([]*domain.Address, error) {
	addresses, err := s.addressRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *accountService) CreateAddress(ctx context.Context, profileID uuid.UUID, input AddressInput) (*domain.Address, error) {
	address := &domain.Address{
		ID:        uuid.New(),
		ProfileID: profileID,
		Name:      input.Name,
		Phone:     input.Phone,
		Line1:     input.Line1,
		Line2:     input.Line2,
		City:      input.City,
		Country:   input.Country,
		CreatedAt: time.Now(),
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}

func (s *accountService) UpdateAddress(ctx context.Context, profileID, addressID uuid.UUID, input AddressInput) (*domain.Address, error) {
	address := &domain.Address{
		ID:        addressID,
		ProfileID: profileID,
		Name:      input.Name,
		Phone:     input.Phone,
		Line1:     input.Line1,
		Line2:     input.Line2,
		City:      input.City,
		Country:   input.Country,
	}

	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return address, nil
}

func (s *accountService) DeleteAddress(ctx context.Context, profileID, addressID uuid.UUID) error {
	if err := s.addressRepo.Delete(ctx, profileID, addressID); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

func (s *accountService) ListWishlist(ctx context.Context, profileID uuid.UUID) ([]*domain.WishlistItem, error) {
	items, err := s.wishlistRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}

func (s *accountService) AddToWishlist(ctx context.Context, profileID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return fmt.Errorf("failed to resolve product: %w", err)
	}

	item := &domain.WishlistItem{
		ID:        uuid.New(),
		ProfileID: profileID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}

	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return nil
}

func (s *accountService) RemoveFromWishlist(ctx context.Context, profileID, productID uuid.UUID) error {
	if err := s.wishlistRepo.Remove(ctx, profileID, productID); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

func (s *accountService) SubmitContactMessage(ctx context.Context, name, email, subject, body string) (*domain.ContactMessage, error) {
	message := &domain.ContactMessage{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create contact message: %w", err)
	}
	return message, nil
}

func (s *accountService) ListContactMessages(ctx context.Context, page, pageSize int) ([]*domain.ContactMessage, int, error) {
	messages, total, err := s.messageRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return messages, total, nil
}

func (s *accountService) MarkMessageRead(ctx context.Context, id uuid.UUID) error {
	if err := s.messageRepo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}
