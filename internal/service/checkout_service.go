package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ministry-shop/internal/cart"
	"ministry-shop/internal/domain"
	"ministry-shop/internal/events"
	"ministry-shop/internal/payment"
	"ministry-shop/internal/pricing"
	"ministry-shop/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrShippingNotStaged = errors.New("shipping details have not been provided")
	ErrAmountMismatch    = errors.New("paid amount does not match order total")
)

// CheckoutService prices carts and turns a verified payment into an order.
type CheckoutService interface {
	// Quote prices the current cart without any side effects.
	Quote(ctx context.Context, profileID uuid.UUID) (*pricing.Breakdown, error)

	// StageShipping stores the shipping details collected by the checkout
	// form until the payment callback arrives.
	StageShipping(ctx context.Context, profileID uuid.UUID, sh cart.Shipping) error

	// ConfirmPayment verifies the gateway reference, creates the order with
	// its item snapshots and decrements stock line by line. Stock decrements
	// run after the order is committed; lines that cannot be covered are
	// reported in the returned error while the order itself stands.
	ConfirmPayment(ctx context.Context, profileID uuid.UUID, reference string) (*domain.Order, error)
}

type checkoutService struct {
	carts        *cart.Store
	verifier     payment.Verifier
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	settingsRepo repository.SettingsRepository
	producer     *events.Producer
	logger       *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(
	carts *cart.Store,
	verifier payment.Verifier,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	settingsRepo repository.SettingsRepository,
	producer *events.Producer,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		carts:        carts,
		verifier:     verifier,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		settingsRepo: settingsRepo,
		producer:     producer,
		logger:       logger,
	}
}

func (s *checkoutService) Quote(ctx context.Context, profileID uuid.UUID) (*pricing.Breakdown, error) {
	lines, err := s.carts.Get(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	breakdown := pricing.Quote(toLineItems(lines), s.settings(ctx))
	return &breakdown, nil
}

func (s *checkoutService) StageShipping(ctx context.Context, profileID uuid.UUID, sh cart.Shipping) error {
	lines, err := s.carts.Get(ctx, profileID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return cart.ErrEmptyCart
	}
	if err := s.carts.StageShipping(ctx, profileID, sh); err != nil {
		return fmt.Errorf("failed to stage shipping details: %w", err)
	}
	return nil
}

func (s *checkoutService) ConfirmPayment(ctx context.Context, profileID uuid.UUID, reference string) (*domain.Order, error) {
	lines, err := s.carts.Get(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, cart.ErrEmptyCart
	}

	shipping, staged, err := s.carts.StagedShipping(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping details: %w", err)
	}
	if !staged {
		return nil, ErrShippingNotStaged
	}

	// Nothing is written until the gateway confirms the charge.
	tx, err := s.verifier.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.Quote(toLineItems(lines), s.settings(ctx))
	if tx.Amount != breakdown.Total {
		return nil, fmt.Errorf("%w: reference %s paid %d, expected %d",
			ErrAmountMismatch, reference, tx.Amount, breakdown.Total)
	}

	now := time.Now()
	order := &domain.Order{
		ID:               uuid.New(),
		OrderNumber:      newOrderNumber(now),
		ProfileID:        profileID,
		Subtotal:         breakdown.Subtotal,
		Shipping:         breakdown.Shipping,
		Tax:              breakdown.Tax,
		Total:            breakdown.Total,
		Status:           domain.OrderStatusProcessing,
		PaymentStatus:    domain.PaymentStatusPaid,
		PaymentReference: reference,
		ShippingName:     shipping.Name,
		ShippingEmail:    shipping.Email,
		ShippingPhone:    shipping.Phone,
		ShippingAddress:  joinAddress(shipping.Line1, shipping.Line2),
		ShippingCity:     shipping.City,
		ShippingCountry:  shipping.Country,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, line := range lines {
		order.Items = append(order.Items, &domain.OrderItem{
			ID:            uuid.New(),
			OrderID:       order.ID,
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			ProductImage:  line.ProductImage,
			UnitPrice:     line.UnitPrice,
			Quantity:      line.Quantity,
			SelectedSize:  line.SelectedSize,
			SelectedColor: line.SelectedColor,
			CreatedAt:     now,
		})
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Stock is adjusted per line after the order is committed. The payment
	// has already been captured, so a line the warehouse cannot cover must
	// not void the order; it surfaces in the error for manual follow-up.
	var stockErrs []error
	for _, line := range lines {
		if err := s.decrementLine(ctx, line); err != nil {
			stockErrs = append(stockErrs, fmt.Errorf(
				"stock adjustment for %q (size %q, color %q) on reference %s: %w",
				line.ProductName, line.SelectedSize, line.SelectedColor, reference, err))
		}
	}

	if err := s.carts.Clear(ctx, profileID); err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.String("profile_id", profileID.String()), zap.Error(err))
	}
	if err := s.carts.ClearShipping(ctx, profileID); err != nil {
		s.logger.Warn("failed to clear staged shipping after checkout",
			zap.String("profile_id", profileID.String()), zap.Error(err))
	}

	s.producer.OrderCreated(ctx, order)

	return order, errors.Join(stockErrs...)
}

// decrementLine adjusts stock at the variant level when the line selects a
// size or color, otherwise at the product level.
func (s *checkoutService) decrementLine(ctx context.Context, line cart.Line) error {
	if line.SelectedSize == "" && line.SelectedColor == "" {
		return s.productRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
	}

	variant, err := s.productRepo.FindVariant(ctx, line.ProductID, line.SelectedSize, line.SelectedColor)
	if err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			// The product carries sizes and colors as plain attributes
			// without per-variant stock rows.
			return s.productRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
		}
		return err
	}
	return s.productRepo.DecrementVariantStock(ctx, variant.ID, line.Quantity)
}

// settings reads the store settings, falling back to the defaults so a
// missing or unreadable row never blocks checkout.
func (s *checkoutService) settings(ctx context.Context) pricing.Settings {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		s.logger.Warn("failed to load store settings, using defaults", zap.Error(err))
		return pricing.DefaultSettings()
	}
	return settings
}

func toLineItems(lines []cart.Line) []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, pricing.LineItem{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}
	return items
}

// newOrderNumber builds a human-readable order number like ORD-20250131-4F2A9C.
func newOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:6]
	return fmt.Sprintf("ORD-%s-%s", t.Format("20060102"), suffix)
}

func joinAddress(line1, line2 string) string {
	if line2 == "" {
		return line1
	}
	return line1 + ", " + line2
}
