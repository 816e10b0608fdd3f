package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/umesh2702/OUTLAW/models"
	"github.com/umesh2702/OUTLAW/storage"
)

func product(id string, price float64) models.Product {
	return models.Product{ID: id, Name: "shirt-" + id, Price: price, Category: "tees", StockQuantity: 10}
}

func newTestStore(t *testing.T, kv storage.KV) *Store {
	t.Helper()
	s := NewStore(kv, "sess-1", zap.NewNop())
	s.Hydrate(context.Background())
	return s
}

func TestAdd_MergesRepeatedAdds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	p := product("p1", 55)
	s.Add(ctx, p, 2)
	s.Add(ctx, p, 3)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAdd_SnapshotsProduct(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	p := product("p1", 55)
	s.Add(ctx, p, 1)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, p, items[0].Product)
}

func TestAdd_QuantityBelowOneCountsAsOne(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	s.Add(ctx, product("p1", 10), 0)
	assert.Equal(t, 1, s.Count())
}

func TestUpdateQuantity_ZeroOrBelowRemoves(t *testing.T) {
	ctx := context.Background()

	t.Run("zero", func(t *testing.T) {
		s := newTestStore(t, storage.NewMemory())
		s.Add(ctx, product("p1", 10), 2)
		s.UpdateQuantity(ctx, "p1", 0)
		assert.Empty(t, s.Items())
	})

	t.Run("negative", func(t *testing.T) {
		s := newTestStore(t, storage.NewMemory())
		s.Add(ctx, product("p1", 10), 2)
		s.UpdateQuantity(ctx, "p1", -1)
		assert.Empty(t, s.Items())
	})
}

func TestUpdateQuantity_IsAbsoluteSet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	s.Add(ctx, product("p1", 10), 2)
	s.UpdateQuantity(ctx, "p1", 7)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestUpdateQuantity_UnknownProductIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	s.Add(ctx, product("p1", 10), 2)
	s.UpdateQuantity(ctx, "ghost", 5)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestRemove_AbsentIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	s.Add(ctx, product("p1", 10), 1)
	s.Remove(ctx, "ghost")
	assert.Len(t, s.Items(), 1)
}

func TestDerivedTotals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	s.Add(ctx, product("p1", 55), 2)
	s.Add(ctx, product("p2", 45), 1)

	assert.Equal(t, 3, s.Count())
	assert.InDelta(t, 155.0, s.Total(), 0.0001)
}

func TestTotal_MissingPriceContributesZero(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	s.Add(ctx, product("p1", 0), 4)
	s.Add(ctx, product("p2", 20), 1)

	assert.InDelta(t, 20.0, s.Total(), 0.0001)
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	s := newTestStore(t, kv)
	s.Add(ctx, product("p1", 55), 2)
	s.Add(ctx, product("p2", 45), 1)

	reloaded := newTestStore(t, kv)
	assert.Equal(t, s.Items(), reloaded.Items())
	assert.Equal(t, 3, reloaded.Count())
	assert.InDelta(t, 155.0, reloaded.Total(), 0.0001)
}

func TestClear_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	s.Clear(ctx)
	assert.Empty(t, s.Items())

	s.Add(ctx, product("p1", 10), 1)
	s.Clear(ctx)
	s.Clear(ctx)
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.Count())
}

func TestHydrate_CorruptDocumentYieldsEmptyCart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, Key("sess-1"), []byte("{broken")))

	s := newTestStore(t, kv)
	assert.Empty(t, s.Items())
	assert.False(t, s.Loading())
}

func TestLoadingBeforeHydrate(t *testing.T) {
	s := NewStore(storage.NewMemory(), "sess-1", zap.NewNop())
	assert.True(t, s.Loading())
	assert.Empty(t, s.Items())

	s.Hydrate(context.Background())
	assert.False(t, s.Loading())
}

func TestMutationBeforeHydrateDoesNotClobberStoredCart(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	first := newTestStore(t, kv)
	first.Add(ctx, product("p1", 10), 2)

	// A second store mutates before hydrating; the persisted document must
	// still hold the original cart.
	second := NewStore(kv, "sess-1", zap.NewNop())
	second.Add(ctx, product("p2", 5), 1)

	reloaded := newTestStore(t, kv)
	items := reloaded.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
}

func TestSubscribe_NotifiesOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, storage.NewMemory())

	calls := 0
	cancel := s.Subscribe(func() { calls++ })

	s.Add(ctx, product("p1", 10), 1)
	s.UpdateQuantity(ctx, "p1", 3)
	s.Remove(ctx, "p1")
	s.Clear(ctx)
	assert.Equal(t, 4, calls)

	cancel()
	s.Add(ctx, product("p1", 10), 1)
	assert.Equal(t, 4, calls)
}
