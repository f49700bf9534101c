package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ministry-shop/internal/domain"

	"github.com/google/uuid"
)

func seedProfile(t *testing.T) *domain.Profile {
	t.Helper()

	profile := &domain.Profile{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("customer-%s@example.com", uuid.New()),
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhash",
		FirstName:    "Grace",
		LastName:     "Mwangi",
		Role:         "customer",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := NewProfileRepository(testDB).Create(context.Background(), profile); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return profile
}

func buildOrder(profileID uuid.UUID) *domain.Order {
	orderID := uuid.New()
	return &domain.Order{
		ID:               orderID,
		OrderNumber:      fmt.Sprintf("ORD-%d-%s", time.Now().UnixNano(), uuid.New().String()[:8]),
		ProfileID:        profileID,
		Subtotal:         2000,
		Shipping:         300,
		Tax:              320,
		Total:            2620,
		Status:           domain.OrderStatusProcessing,
		PaymentStatus:    domain.PaymentStatusPaid,
		PaymentReference: "ref-" + uuid.New().String(),
		ShippingName:     "Grace Mwangi",
		ShippingEmail:    "grace@example.com",
		ShippingCity:     "Nairobi",
		ShippingCountry:  "KE",
		Items: []*domain.OrderItem{
			{
				ID:          uuid.New(),
				OrderID:     orderID,
				ProductID:   uuid.New(),
				ProductName: "Study Bible",
				UnitPrice:   1000,
				Quantity:    2,
				CreatedAt:   time.Now(),
			},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestOrderCreate_RoundTripWithItems(t *testing.T) {
	profile := seedProfile(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := buildOrder(profile.ID)
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	retrieved, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to find order: %v", err)
	}

	if retrieved.OrderNumber != order.OrderNumber {
		t.Errorf("order number mismatch: %s vs %s", retrieved.OrderNumber, order.OrderNumber)
	}
	if retrieved.Total != order.Subtotal+order.Shipping+order.Tax {
		t.Errorf("total %d does not equal subtotal+shipping+tax", retrieved.Total)
	}
	if len(retrieved.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(retrieved.Items))
	}
	if retrieved.Items[0].ProductName != "Study Bible" {
		t.Errorf("item snapshot lost product name: %q", retrieved.Items[0].ProductName)
	}
}

func TestOrderItems_AreSnapshotsDecoupledFromProducts(t *testing.T) {
	// the order item references a product id that no longer exists; history
	// must still read back intact
	profile := seedProfile(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := buildOrder(profile.ID)
	order.Items[0].ProductID = uuid.New() // never inserted into products
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	retrieved, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to find order: %v", err)
	}
	if retrieved.Items[0].UnitPrice != 1000 || retrieved.Items[0].Quantity != 2 {
		t.Errorf("snapshot fields altered: %+v", retrieved.Items[0])
	}
}

func TestOrderUpdateStatus(t *testing.T) {
	profile := seedProfile(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := buildOrder(profile.ID)
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if err := repo.UpdateStatus(ctx, order.ID, domain.OrderStatusShipped); err != nil {
		t.Fatalf("failed to update status: %v", err)
	}
	if err := repo.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusRefunded); err != nil {
		t.Fatalf("failed to update payment status: %v", err)
	}

	retrieved, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to find order: %v", err)
	}
	if retrieved.Status != domain.OrderStatusShipped {
		t.Errorf("expected shipped, got %s", retrieved.Status)
	}
	if retrieved.PaymentStatus != domain.PaymentStatusRefunded {
		t.Errorf("expected refunded, got %s", retrieved.PaymentStatus)
	}
}

func TestOrderUpdateStatus_NotFound(t *testing.T) {
	repo := NewOrderRepository(testDB)

	err := repo.UpdateStatus(context.Background(), uuid.New(), domain.OrderStatusShipped)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestListByProfile_ReturnsOnlyOwnOrders(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	alice := seedProfile(t)
	bob := seedProfile(t)

	if err := repo.Create(ctx, buildOrder(alice.ID)); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if err := repo.Create(ctx, buildOrder(bob.ID)); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	orders, err := repo.ListByProfile(ctx, alice.ID)
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}
	for _, o := range orders {
		if o.ProfileID != alice.ID {
			t.Errorf("order %s belongs to another customer", o.ID)
		}
	}
	if len(orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(orders))
	}
}

func TestSummary_AggregatesPaidOrders(t *testing.T) {
	profile := seedProfile(t)
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	order := buildOrder(profile.ID)
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	summary, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("failed to build summary: %v", err)
	}
	if summary.TotalRevenue < order.Total {
		t.Errorf("revenue %d should include order total %d", summary.TotalRevenue, order.Total)
	}
	if summary.CountsByStatus["processing"] < 1 {
		t.Errorf("expected at least one processing order, got %+v", summary.CountsByStatus)
	}
	if len(summary.TopProducts) == 0 {
		t.Error("expected at least one top product")
	}
}
