package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/pricing"
	"github.com/rugstore/storefront/internal/repository"
	"github.com/rugstore/storefront/internal/repository/memory"
	"github.com/rugstore/storefront/pkg/errors"
)

func orderRequest(method domain.ShippingMethod, total string) domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		Email:          "Ana@Example.com",
		Name:           "Ana",
		Phone:          "555-0100",
		Address:        "1 Loom St",
		City:           "Springfield",
		Zip:            "12345",
		ShippingMethod: method,
		PaymentMethod:  domain.PaymentCashOnDelivery,
		Total:          decimal.RequireFromString(total),
		Items: []domain.CreateOrderItem{
			{ProductID: "p1", Size: "M", Quantity: 2, Price: decimal.RequireFromString("20.00")},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	repos := memory.NewRepositories()
	svc := NewOrderService(repos, pricing.DefaultRates(), zap.NewNop())
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, nil, orderRequest(domain.ShippingExpress, "75.00"))
	require.NoError(t, err)

	assert.Equal(t, "1001", order.Number)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.OrderStageNew, order.Stage)
	assert.Equal(t, "ana@example.com", order.Email)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("40.00")))
	assert.True(t, order.ShippingCost.Equal(decimal.RequireFromString("35.00")))

	events, err := svc.OrderEvents(ctx, order.Number)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "order_created", events[0].EventType)

	second, err := svc.CreateOrder(ctx, nil, orderRequest(domain.ShippingStandard, "55.00"))
	require.NoError(t, err)
	assert.Equal(t, "1002", second.Number)
}

func TestCreateOrderTotalMismatch(t *testing.T) {
	svc := NewOrderService(memory.NewRepositories(), pricing.DefaultRates(), zap.NewNop())

	_, err := svc.CreateOrder(context.Background(), nil, orderRequest(domain.ShippingStandard, "40.00"))

	var validation *errors.ErrValidation
	require.True(t, stderrors.As(err, &validation))
	assert.Equal(t, "total", validation.Field)
}

func TestCreateOrderRejectsBlankContactFields(t *testing.T) {
	repos := memory.NewRepositories()
	svc := NewOrderService(repos, pricing.DefaultRates(), zap.NewNop())

	req := orderRequest(domain.ShippingStandard, "55.00")
	req.Address = " \t "

	_, err := svc.CreateOrder(context.Background(), nil, req)

	var validation *errors.ErrValidation
	require.True(t, stderrors.As(err, &validation))
	assert.Equal(t, "address", validation.Field)

	_, count, err := repos.Order.List(context.Background(), domain.OrderFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateOrderUnknownMethod(t *testing.T) {
	svc := NewOrderService(memory.NewRepositories(), pricing.DefaultRates(), zap.NewNop())

	_, err := svc.CreateOrder(context.Background(), nil, orderRequest("drone", "40.00"))

	var validation *errors.ErrValidation
	require.True(t, stderrors.As(err, &validation))
	assert.Equal(t, "shipping_method", validation.Field)
}

func TestGetOrderAccess(t *testing.T) {
	svc := NewOrderService(memory.NewRepositories(), pricing.DefaultRates(), zap.NewNop())
	ctx := context.Background()
	owner := uuid.New()

	order, err := svc.CreateOrder(ctx, &owner, orderRequest(domain.ShippingStandard, "55.00"))
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, Caller{UserID: owner}, order.Number)
	assert.NoError(t, err)

	_, err = svc.GetOrder(ctx, Caller{UserID: uuid.New(), IsStaff: true}, order.Number)
	assert.NoError(t, err)

	_, err = svc.GetOrder(ctx, Caller{UserID: uuid.New()}, order.Number)
	var forbidden *errors.ErrForbidden
	assert.True(t, stderrors.As(err, &forbidden))

	_, err = svc.GetOrder(ctx, Caller{UserID: owner}, "9999")
	var notFound *errors.ErrNotFound
	assert.True(t, stderrors.As(err, &notFound))
}

func TestListOrdersPaging(t *testing.T) {
	svc := NewOrderService(memory.NewRepositories(), pricing.DefaultRates(), zap.NewNop())
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.CreateOrder(ctx, nil, orderRequest(domain.ShippingStandard, "55.00"))
		require.NoError(t, err)
	}

	list, err := svc.ListOrders(ctx, ListOrdersRequest{Page: 1, PageSize: 2, Ordering: "order_number"})
	require.NoError(t, err)
	assert.Equal(t, 5, list.Count)
	require.Len(t, list.Orders, 2)
	assert.Equal(t, "1001", list.Orders[0].Number)
	assert.True(t, list.HasNext())
	assert.False(t, list.HasPrevious())

	list, err = svc.ListOrders(ctx, ListOrdersRequest{Page: 3, PageSize: 2, Ordering: "order_number"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.False(t, list.HasNext())
	assert.True(t, list.HasPrevious())

	_, err = svc.ListOrders(ctx, ListOrdersRequest{Page: 4, PageSize: 2})
	assert.ErrorIs(t, err, ErrInvalidPage)

	list, err = svc.ListOrders(ctx, ListOrdersRequest{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, list.PageSize)
}

func TestListOrdersEmptyFirstPage(t *testing.T) {
	svc := NewOrderService(memory.NewRepositories(), pricing.DefaultRates(), zap.NewNop())

	list, err := svc.ListOrders(context.Background(), ListOrdersRequest{Search: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
	assert.Empty(t, list.Orders)
}

func TestUpdateOrder(t *testing.T) {
	svc := NewOrderService(memory.NewRepositories(), pricing.DefaultRates(), zap.NewNop())
	ctx := context.Background()
	staff := Caller{UserID: uuid.New(), IsStaff: true}

	order, err := svc.CreateOrder(ctx, nil, orderRequest(domain.ShippingStandard, "55.00"))
	require.NoError(t, err)

	stage := domain.OrderStageShipped
	updated, err := svc.UpdateOrder(ctx, staff, order.Number, domain.UpdateOrderRequest{Stage: &stage})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStageShipped, updated.Stage)
	assert.Equal(t, domain.OrderStatusPending, updated.Status)

	delivered := domain.OrderStatusDelivered
	_, err = svc.UpdateOrder(ctx, staff, order.Number, domain.UpdateOrderRequest{Status: &delivered})
	var transition *errors.ErrInvalidStateTransition
	require.True(t, stderrors.As(err, &transition))
	assert.Equal(t, "pending", transition.From)

	processing := domain.OrderStatusProcessing
	updated, err = svc.UpdateOrder(ctx, staff, order.Number, domain.UpdateOrderRequest{Status: &processing})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)

	bogus := domain.OrderStage("teleported")
	_, err = svc.UpdateOrder(ctx, staff, order.Number, domain.UpdateOrderRequest{Stage: &bogus})
	var validation *errors.ErrValidation
	assert.True(t, stderrors.As(err, &validation))

	events, err := svc.OrderEvents(ctx, order.Number)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

type failingUpdateRepo struct {
	repository.OrderRepository
}

func (failingUpdateRepo) Update(context.Context, uuid.UUID, domain.OrderStatus, domain.OrderStage) error {
	return stderrors.New("connection reset")
}

func TestUpdateOrderWritesStatusAndStageTogether(t *testing.T) {
	repos := memory.NewRepositories()
	svc := NewOrderService(repos, pricing.DefaultRates(), zap.NewNop())
	ctx := context.Background()
	staff := Caller{UserID: uuid.New(), IsStaff: true}

	order, err := svc.CreateOrder(ctx, nil, orderRequest(domain.ShippingStandard, "55.00"))
	require.NoError(t, err)

	processing := domain.OrderStatusProcessing
	packed := domain.OrderStagePacked
	req := domain.UpdateOrderRequest{Status: &processing, Stage: &packed}

	healthy := repos.Order
	repos.Order = failingUpdateRepo{OrderRepository: healthy}
	_, err = svc.UpdateOrder(ctx, staff, order.Number, req)
	require.Error(t, err)

	repos.Order = healthy
	unchanged, err := repos.Order.GetByNumber(ctx, order.Number)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, unchanged.Status)
	assert.Equal(t, domain.OrderStageNew, unchanged.Stage)

	events, err := svc.OrderEvents(ctx, order.Number)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	updated, err := svc.UpdateOrder(ctx, staff, order.Number, req)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
	assert.Equal(t, domain.OrderStagePacked, updated.Stage)

	events, err = svc.OrderEvents(ctx, order.Number)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
