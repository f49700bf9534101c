package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ministry-shop/internal/cart"
	"ministry-shop/internal/domain"
	"ministry-shop/internal/middleware"
	"ministry-shop/internal/pricing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCheckoutService prices carts straight from the store and returns the
// configured order or error on confirmation.
type mockCheckoutService struct {
	carts      *cart.Store
	order      *domain.Order
	confirmErr error
}

func (m *mockCheckoutService) Quote(ctx context.Context, profileID uuid.UUID) (*pricing.Breakdown, error) {
	if m.carts == nil {
		return &pricing.Breakdown{}, nil
	}
	lines, err := m.carts.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	items := make([]pricing.LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, pricing.LineItem{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
	}
	breakdown := pricing.Quote(items, pricing.DefaultSettings())
	return &breakdown, nil
}

func (m *mockCheckoutService) StageShipping(ctx context.Context, profileID uuid.UUID, sh cart.Shipping) error {
	return nil
}

func (m *mockCheckoutService) ConfirmPayment(ctx context.Context, profileID uuid.UUID, reference string) (*domain.Order, error) {
	return m.order, m.confirmErr
}

// authenticatedAs injects the profile claims the way the JWT middleware does.
func authenticatedAs(profileID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.ProfileIDKey, profileID.String())
			ctx = context.WithValue(ctx, middleware.ProfileRoleKey, "customer")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newCartRouter(t *testing.T, profileID uuid.UUID) (chi.Router, *cart.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cart.NewStore(rdb, time.Hour)

	handler := NewCartHandler(store, nil, &mockCheckoutService{carts: store}, zap.NewNop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router, authenticatedAs(profileID))
	return router, store
}

func seedCartLine(t *testing.T, store *cart.Store, profileID uuid.UUID, quantity int) cart.Line {
	t.Helper()

	lines, err := store.AddItem(context.Background(), profileID, cart.Line{
		ProductID:   uuid.New(),
		ProductName: "Study Bible",
		UnitPrice:   2000,
		Quantity:    quantity,
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	return lines[0]
}

func TestUpdateItem_ZeroQuantityRemovesLine(t *testing.T) {
	for _, quantity := range []int{0, -1} {
		t.Run(fmt.Sprintf("quantity %d", quantity), func(t *testing.T) {
			profileID := uuid.New()
			router, store := newCartRouter(t, profileID)
			line := seedCartLine(t, store, profileID, 2)

			body, err := json.Marshal(UpdateCartItemRequest{Quantity: quantity})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPut, "/api/cart/items/"+line.ID, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var response CartResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Empty(t, response.Lines)
			assert.Zero(t, response.Breakdown.Total)

			lines, err := store.Get(context.Background(), profileID)
			require.NoError(t, err)
			assert.Empty(t, lines)
		})
	}
}

func TestUpdateItem_PositiveQuantityReplacesCount(t *testing.T) {
	profileID := uuid.New()
	router, store := newCartRouter(t, profileID)
	line := seedCartLine(t, store, profileID, 2)

	body, err := json.Marshal(UpdateCartItemRequest{Quantity: 5})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/"+line.ID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response CartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Lines, 1)
	assert.Equal(t, 5, response.Lines[0].Quantity)
}

func TestUpdateItem_UnknownLineReturnsNotFound(t *testing.T) {
	profileID := uuid.New()
	router, _ := newCartRouter(t, profileID)

	body, err := json.Marshal(UpdateCartItemRequest{Quantity: 1})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/missing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
