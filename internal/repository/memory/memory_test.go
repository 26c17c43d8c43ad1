package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rugstore/storefront/internal/domain"
)

func TestOrderListSearchAndOrdering(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	for _, o := range []struct {
		name  string
		total string
	}{
		{"Ana Weaver", "55.00"},
		{"Bob Loom", "120.00"},
		{"Cleo Weaver", "30.00"},
	} {
		require.NoError(t, repos.Order.Create(ctx, &domain.Order{
			CustomerName: o.name,
			Email:        "x@example.com",
			Total:        decimal.RequireFromString(o.total),
			Status:       domain.OrderStatusPending,
			Stage:        domain.OrderStageNew,
		}))
	}

	orders, count, err := repos.Order.List(ctx, domain.OrderFilter{Search: "weaver", Ordering: "-total", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, orders, 2)
	assert.Equal(t, "Ana Weaver", orders[0].CustomerName)
	assert.Equal(t, "Cleo Weaver", orders[1].CustomerName)

	orders, count, err = repos.Order.List(ctx, domain.OrderFilter{Search: "1002", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "Bob Loom", orders[0].CustomerName)

	orders, count, err = repos.Order.List(ctx, domain.OrderFilter{Ordering: "order_number", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, orders, 1)
	assert.Equal(t, "1003", orders[0].Number)
}

func TestOrderUpdatesAreIsolated(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	order := &domain.Order{Status: domain.OrderStatusPending, Stage: domain.OrderStageNew}
	require.NoError(t, repos.Order.Create(ctx, order))

	fetched, err := repos.Order.GetByNumber(ctx, order.Number)
	require.NoError(t, err)
	fetched.Stage = domain.OrderStageOnHold

	again, err := repos.Order.GetByNumber(ctx, order.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStageNew, again.Stage)

	require.NoError(t, repos.Order.Update(ctx, order.ID, domain.OrderStatusProcessing, domain.OrderStagePacked))
	again, err = repos.Order.GetByNumber(ctx, order.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStagePacked, again.Stage)
	assert.Equal(t, domain.OrderStatusProcessing, again.Status)
}

func TestOrderNumberOrderingIsNumeric(t *testing.T) {
	repos := NewRepositories()
	repos.Order.(*orderRepository).next = 9999
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, repos.Order.Create(ctx, &domain.Order{Status: domain.OrderStatusPending, Stage: domain.OrderStageNew}))
	}

	orders, _, err := repos.Order.List(ctx, domain.OrderFilter{Ordering: "order_number", Limit: 10})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "9999", orders[0].Number)
	assert.Equal(t, "10000", orders[1].Number)
}
