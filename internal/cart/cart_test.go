package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewStore(rdb, time.Hour)
}

func line(productID uuid.UUID, size, color string, qty int) Line {
	return Line{
		ProductID:     productID,
		ProductName:   "Hymnal",
		UnitPrice:     1000,
		Quantity:      qty,
		SelectedSize:  size,
		SelectedColor: color,
	}
}

func TestAddItem_MergesIdenticalSelection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	customer := uuid.New()
	product := uuid.New()

	_, err := store.AddItem(ctx, customer, line(product, "M", "blue", 1))
	require.NoError(t, err)

	lines, err := store.AddItem(ctx, customer, line(product, "M", "blue", 2))
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddItem_DifferentSelectionProducesDistinctLines(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	customer := uuid.New()
	product := uuid.New()

	_, err := store.AddItem(ctx, customer, line(product, "M", "blue", 1))
	require.NoError(t, err)

	lines, err := store.AddItem(ctx, customer, line(product, "L", "blue", 1))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	lines, err = store.AddItem(ctx, customer, line(product, "M", "red", 1))
	require.NoError(t, err)
	assert.Len(t, lines, 3)
}

func TestUpdateQuantity_BelowOneRemovesLine(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	customer := uuid.New()
	product := uuid.New()

	added, err := store.AddItem(ctx, customer, line(product, "M", "blue", 2))
	require.NoError(t, err)

	lines, err := store.UpdateQuantity(ctx, customer, added[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// the cart key itself is gone, matching a fresh cart
	lines, err = store.Get(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestUpdateQuantity_SetsValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	customer := uuid.New()
	product := uuid.New()

	added, err := store.AddItem(ctx, customer, line(product, "M", "blue", 2))
	require.NoError(t, err)

	lines, err := store.UpdateQuantity(ctx, customer, added[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestUpdateQuantity_UnknownLine(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateQuantity(context.Background(), uuid.New(), "nope", 2)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveItem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	customer := uuid.New()
	a, b := uuid.New(), uuid.New()

	_, err := store.AddItem(ctx, customer, line(a, "", "", 1))
	require.NoError(t, err)
	added, err := store.AddItem(ctx, customer, line(b, "", "", 1))
	require.NoError(t, err)
	require.Len(t, added, 2)

	lines, err := store.RemoveItem(ctx, customer, added[0].ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, b, lines[0].ProductID)

	_, err = store.RemoveItem(ctx, customer, added[0].ID)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	customer := uuid.New()

	_, err := store.AddItem(ctx, customer, line(uuid.New(), "", "", 1))
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, customer))

	lines, err := store.Get(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestStageShipping_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	customer := uuid.New()

	_, ok, err := store.StagedShipping(ctx, customer)
	require.NoError(t, err)
	assert.False(t, ok)

	sh := Shipping{
		Name:    "Grace Mwangi",
		Email:   "grace@example.com",
		Phone:   "+254700000000",
		Line1:   "PO Box 100",
		City:    "Nairobi",
		Country: "KE",
	}
	require.NoError(t, store.StageShipping(ctx, customer, sh))

	got, ok, err := store.StagedShipping(ctx, customer)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sh, got)

	require.NoError(t, store.ClearShipping(ctx, customer))
	_, ok, err = store.StagedShipping(ctx, customer)
	require.NoError(t, err)
	assert.False(t, ok)
}
