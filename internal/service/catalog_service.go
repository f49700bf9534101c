package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ministry-shop/internal/domain"
	"ministry-shop/internal/pricing"
	"ministry-shop/internal/repository"

	"github.com/google/uuid"
)

// ProductInput carries the fields an admin can set on a product.
type ProductInput struct {
	Name           string
	Description    string
	Price          int64
	CompareAtPrice *int64
	CategoryID     uuid.UUID
	SKU            string
	Images         []string
	Stock          int
	Sizes          []string
	Colors         []string
}

// VariantInput carries one size/color stock row.
type VariantInput struct {
	Size  string
	Color string
	Stock int
}

// CatalogService covers the product catalog: storefront reads and the admin
// console's product, category, review and settings management.
type CatalogService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ReplaceVariants(ctx context.Context, productID uuid.UUID, inputs []VariantInput) (*domain.Product, error)

	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListReviews(ctx context.Context, productID uuid.UUID) ([]*domain.ProductReview, error)
	ListAllReviews(ctx context.Context, page, pageSize int) ([]*domain.ProductReview, int, error)
	CreateReview(ctx context.Context, profileID, productID uuid.UUID, rating int, comment string) (*domain.ProductReview, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error

	GetSettings(ctx context.Context) (pricing.Settings, error)
	UpdateSettings(ctx context.Context, settings pricing.Settings) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	reviewRepo   repository.ReviewRepository
	settingsRepo repository.SettingsRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	reviewRepo repository.ReviewRepository,
	settingsRepo repository.SettingsRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		reviewRepo:   reviewRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	products, total, err := s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *catalogService) SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	products, total, err := s.productRepo.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	return products, total, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	now := time.Now()
	product := &domain.Product{
		ID:             uuid.New(),
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		CompareAtPrice: input.CompareAtPrice,
		CategoryID:     input.CategoryID,
		SKU:            input.SKU,
		Images:         input.Images,
		Stock:          input.Stock,
		Sizes:          input.Sizes,
		Colors:         input.Colors,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product.CategoryID != input.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.CompareAtPrice = input.CompareAtPrice
	product.CategoryID = input.CategoryID
	product.SKU = input.SKU
	product.Images = input.Images
	product.Stock = input.Stock
	product.Sizes = input.Sizes
	product.Colors = input.Colors
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *catalogService) ReplaceVariants(ctx context.Context, productID uuid.UUID, inputs []VariantInput) (*domain.Product, error) {
	variants := make([]*domain.ProductVariant, 0, len(inputs))
	now := time.Now()
	for _, input := range inputs {
		variants = append(variants, &domain.ProductVariant{
			ID:        uuid.New(),
			ProductID: productID,
			Size:      input.Size,
			Color:     input.Color,
			Stock:     input.Stock,
			CreatedAt: now,
		})
	}

	if err := s.productRepo.ReplaceVariants(ctx, productID, variants); err != nil {
		return nil, fmt.Errorf("failed to replace variants: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slugify(name),
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category.Name = name
	category.Slug = slugify(name)
	category.Description = description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *catalogService) ListReviews(ctx context.Context, productID uuid.UUID) ([]*domain.ProductReview, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *catalogService) ListAllReviews(ctx context.Context, page, pageSize int) ([]*domain.ProductReview, int, error) {
	reviews, total, err := s.reviewRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (s *catalogService) CreateReview(ctx context.Context, profileID, productID uuid.UUID, rating int, comment string) (*domain.ProductReview, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	review := &domain.ProductReview{
		ID:        uuid.New(),
		ProductID: productID,
		ProfileID: profileID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

func (s *catalogService) DeleteReview(ctx context.Context, id uuid.UUID) error {
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (s *catalogService) GetSettings(ctx context.Context) (pricing.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return pricing.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func (s *catalogService) UpdateSettings(ctx context.Context, settings pricing.Settings) error {
	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// slugify derives a URL slug from a category name.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastHyphen := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
