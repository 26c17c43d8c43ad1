package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/localstore"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newStore(t *testing.T) (*Store, *localstore.MemoryStore) {
	t.Helper()
	mem := localstore.NewMemoryStore()
	return Open(mem, zap.NewNop()), mem
}

var (
	kilim  = Product{ID: "p-kilim", Name: "Kilim Runner", Price: d("20.00")}
	berber = Product{ID: "p-berber", Name: "Berber Wool", Price: d("15.00")}
)

func TestAddItemMergesIdenticalSelections(t *testing.T) {
	s, _ := newStore(t)

	s.AddItem(kilim, "2x3", 1, "v-red", "red")
	s.AddItem(kilim, "2x3", 2, "v-red", "red")
	s.AddItem(kilim, "2x3", 4, "v-red", "red")

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
	assert.Equal(t, ItemID("p-kilim", "v-red", "2x3"), items[0].ID)
}

func TestAddItemDistinctCombinations(t *testing.T) {
	s, _ := newStore(t)

	s.AddItem(kilim, "2x3", 1, "v-red", "red")
	s.AddItem(kilim, "4x6", 1, "v-red", "red")
	s.AddItem(kilim, "2x3", 1, "v-blue", "blue")

	assert.Len(t, s.Items(), 3)
	assert.Equal(t, 3, s.Count())
}

func TestAddItemIgnoresInvalidQuantity(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(kilim, "2x3", 0, "v-red", "red")
	s.AddItem(kilim, "2x3", -3, "v-red", "red")
	assert.True(t, s.IsEmpty())
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(kilim, "2x3", 5, "v-red", "red")
	id := ItemID("p-kilim", "v-red", "2x3")

	for _, n := range []int{0, -1, -100} {
		s.UpdateQuantity(id, n)
		item, ok := s.Item(id)
		require.True(t, ok)
		assert.Equal(t, 1, item.Quantity, "n=%d", n)
	}

	s.UpdateQuantity(id, 3)
	item, _ := s.Item(id)
	assert.Equal(t, 3, item.Quantity)

	s.UpdateQuantity("missing", 9)
	assert.Len(t, s.Items(), 1)
}

func TestSubtotalTracksMutations(t *testing.T) {
	s, _ := newStore(t)

	s.AddItem(kilim, "2x3", 2, "v-red", "red")
	s.AddItem(berber, "5x8", 1, "v-cream", "cream")
	assert.True(t, d("55.00").Equal(s.Subtotal()), "got %s", s.Subtotal())

	s.UpdateQuantity(ItemID("p-berber", "v-cream", "5x8"), 3)
	assert.True(t, d("85.00").Equal(s.Subtotal()))

	s.RemoveItem(ItemID("p-kilim", "v-red", "2x3"))
	assert.True(t, d("45.00").Equal(s.Subtotal()))

	s.RemoveItem("missing")
	assert.True(t, d("45.00").Equal(s.Subtotal()))
}

func TestClear(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(kilim, "2x3", 2, "v-red", "red")
	s.Clear()

	assert.Empty(t, s.Items())
	assert.True(t, s.Subtotal().IsZero())
	assert.Equal(t, 0, s.Count())
}

func TestPersistenceRoundTrip(t *testing.T) {
	s, mem := newStore(t)
	s.AddItem(kilim, "2x3", 2, "v-red", "red")
	s.AddItem(berber, "5x8", 1, "v-cream", "cream")

	restored := Open(mem, zap.NewNop())
	assert.Equal(t, s.Items(), restored.Items())
	assert.True(t, d("55.00").Equal(restored.Subtotal()))
}

func TestOpenMergesDuplicatePersistedItems(t *testing.T) {
	mem := localstore.NewMemoryStore()
	require.NoError(t, mem.Save(localstore.KeyCart, []byte(`{"items":[
		{"product_id":"p-1","variant_id":"v-red","name":"Kilim","unit_price":"12.50","quantity":2,"size":"2x3"},
		{"product_id":"p-2","variant_id":"v-cream","name":"Berber","unit_price":"30.00","quantity":1,"size":"5x8"},
		{"product_id":"p-1","variant_id":"v-red","name":"Kilim","unit_price":"12.50","quantity":3,"size":"2x3"}
	]}`)))

	s := Open(mem, zap.NewNop())
	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, ItemID("p-1", "v-red", "2x3"), items[0].ID)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 6, s.Count())

	s.RemoveItem(items[0].ID)
	assert.Equal(t, 1, s.Count())
}

type failingPersister struct{}

func (failingPersister) Load(string) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingPersister) Save(string, []byte) error   { return errors.New("disk gone") }

func TestPersistenceFailureDoesNotBreakOperations(t *testing.T) {
	s := Open(failingPersister{}, zap.NewNop())
	s.AddItem(kilim, "2x3", 2, "v-red", "red")
	assert.Equal(t, 2, s.Count())
}

func TestSubscriptions(t *testing.T) {
	s, _ := newStore(t)

	var totals []decimal.Decimal
	var counts []int
	itemCalls := 0
	unsubTotal := s.SubscribeSubtotal(func(v decimal.Decimal) { totals = append(totals, v) })
	s.SubscribeCount(func(n int) { counts = append(counts, n) })
	s.SubscribeItems(func([]LineItem) { itemCalls++ })

	s.AddItem(kilim, "2x3", 1, "v-red", "red")
	s.UpdateQuantity("missing", 4)
	s.AddItem(kilim, "2x3", 1, "v-red", "red")

	assert.Equal(t, 3, itemCalls)
	require.Len(t, totals, 2, "unchanged subtotal must not notify")
	assert.True(t, d("40.00").Equal(totals[1]))
	assert.Equal(t, []int{1, 2}, counts)

	unsubTotal()
	s.Clear()
	assert.Len(t, totals, 2)
	assert.Equal(t, []int{1, 2, 0}, counts)
}
