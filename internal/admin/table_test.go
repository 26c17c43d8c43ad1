package admin

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/storefront"
)

type updateCall struct {
	number  string
	stage   domain.OrderStage
	release chan error
}

type fakeSource struct {
	mu      sync.Mutex
	orders  map[string]domain.OrderView
	lists   []storefront.ListOrdersParams
	listErr error
	next    *string

	// when gate is set, UpdateOrder publishes each call and waits for release
	gate chan *updateCall
}

func newFakeSource(orders ...domain.OrderView) *fakeSource {
	f := &fakeSource{orders: make(map[string]domain.OrderView)}
	for _, o := range orders {
		f.orders[o.Number] = o
	}
	return f
}

func (f *fakeSource) ListOrders(_ context.Context, _ string, p storefront.ListOrdersParams) (*domain.OrderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, p)
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := &domain.OrderPage{Count: len(f.orders), Next: f.next}
	for _, number := range []string{"1001", "1002", "1003"} {
		if o, ok := f.orders[number]; ok {
			page.Results = append(page.Results, o)
		}
	}
	return page, nil
}

func (f *fakeSource) UpdateOrder(_ context.Context, _ string, number string, req domain.UpdateOrderRequest) (*domain.OrderView, error) {
	if f.gate != nil {
		call := &updateCall{number: number, stage: *req.Stage, release: make(chan error)}
		f.gate <- call
		if err := <-call.release; err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.orders[number]
	o.Stage = *req.Stage
	f.orders[number] = o
	return &o, nil
}

func (f *fakeSource) setServerStage(number string, stage domain.OrderStage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.orders[number]
	o.Stage = stage
	f.orders[number] = o
}

func order(number string, stage domain.OrderStage) domain.OrderView {
	return domain.OrderView{Number: number, Stage: stage, Status: domain.OrderStatusProcessing}
}

func rowFor(t *testing.T, table *Table, number string) Row {
	t.Helper()
	for _, r := range table.Rows() {
		if r.Order.Number == number {
			return r
		}
	}
	t.Fatalf("row %s not found", number)
	return Row{}
}

func TestFilterChangesResetPage(t *testing.T) {
	src := newFakeSource(order("1001", domain.OrderStageNew))
	table := NewTable(src, "tok", zap.NewNop())

	table.SetPage(3)
	table.SetStatus(domain.OrderStatusShipped)
	assert.Equal(t, 1, table.Query().Page)

	table.SetPage(4)
	table.SetSearch("kilim")
	assert.Equal(t, 1, table.Query().Page)

	table.SetPage(2)
	table.SetOrdering(Ordering{Field: "total"})
	assert.Equal(t, 1, table.Query().Page)

	table.SetPage(2)
	table.SetPageSize(50)
	assert.Equal(t, 1, table.Query().Page)

	table.SetPage(5)
	table.SetSearch("kilim")
	assert.Equal(t, 5, table.Query().Page, "unchanged filter keeps the page")
}

func TestRefreshSendsQuery(t *testing.T) {
	src := newFakeSource(order("1001", domain.OrderStageNew))
	table := NewTable(src, "tok", zap.NewNop())
	table.SetSearch("ada")
	table.SetStatus(domain.OrderStatusPending)

	require.NoError(t, table.Refresh(context.Background()))

	require.Len(t, src.lists, 1)
	p := src.lists[0]
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, "ada", p.Search)
	assert.Equal(t, domain.OrderStatusPending, p.Status)
	assert.Equal(t, "-created_at", p.Ordering)
	assert.Len(t, table.Rows(), 1)
}

func TestRefreshFailureKeepsRows(t *testing.T) {
	src := newFakeSource(order("1001", domain.OrderStageNew))
	table := NewTable(src, "tok", zap.NewNop())
	require.NoError(t, table.Refresh(context.Background()))

	src.listErr = errors.New("connection refused")
	err := table.Refresh(context.Background())

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, err, table.FetchError())
	assert.Len(t, table.Rows(), 1)

	src.listErr = nil
	require.NoError(t, table.Refresh(context.Background()))
	assert.NoError(t, table.FetchError())
}

func TestNextPage(t *testing.T) {
	next := "/v1/admin/orders?page=2"
	src := newFakeSource(order("1001", domain.OrderStageNew))
	src.next = &next
	table := NewTable(src, "tok", zap.NewNop())

	assert.False(t, table.NextPage(), "nothing fetched yet")
	require.NoError(t, table.Refresh(context.Background()))
	assert.True(t, table.NextPage())
	assert.Equal(t, 2, table.Query().Page)
	assert.False(t, table.PrevPage(), "previous unknown until refreshed")
}

func TestSetStageSuccess(t *testing.T) {
	src := newFakeSource(order("1001", domain.OrderStageNew))
	table := NewTable(src, "tok", zap.NewNop())
	require.NoError(t, table.Refresh(context.Background()))

	require.NoError(t, table.SetStage(context.Background(), "1001", domain.OrderStagePacked))

	row := rowFor(t, table, "1001")
	assert.Equal(t, domain.OrderStagePacked, row.Stage)
	assert.Equal(t, domain.OrderStagePacked, row.Order.Stage)
	assert.False(t, row.Pending)
	assert.False(t, row.Updating)
}

func TestSetStageInvalid(t *testing.T) {
	table := NewTable(newFakeSource(), "tok", zap.NewNop())
	assert.Error(t, table.SetStage(context.Background(), "1001", "teleported"))
}

func TestSetStageRejectedRollsBack(t *testing.T) {
	src := newFakeSource(order("1001", domain.OrderStageNew))
	src.gate = make(chan *updateCall)
	table := NewTable(src, "tok", zap.NewNop())
	require.NoError(t, table.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() { done <- table.SetStage(context.Background(), "1001", domain.OrderStageShipped) }()

	call := <-src.gate
	row := rowFor(t, table, "1001")
	assert.Equal(t, domain.OrderStageShipped, row.Stage, "optimistic value shows immediately")
	assert.True(t, row.Pending)
	assert.True(t, row.Updating)

	call.release <- &storefront.APIError{StatusCode: http.StatusBadRequest, Message: "invalid stage"}
	assert.Error(t, <-done)

	row = rowFor(t, table, "1001")
	assert.Equal(t, domain.OrderStageNew, row.Stage)
	assert.False(t, row.Pending)
	assert.False(t, row.Updating)
}

// Clicking "shipped" on #1001 while an earlier update for #1001 is pending:
// the row shows "shipped" right away and stays pending until the server
// reports "shipped".
func TestSetStageWhileEarlierUpdatePending(t *testing.T) {
	src := newFakeSource(order("1001", domain.OrderStageNew), order("1002", domain.OrderStageNew))
	src.gate = make(chan *updateCall)
	table := NewTable(src, "tok", zap.NewNop())
	require.NoError(t, table.Refresh(context.Background()))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- table.SetStage(ctx, "1001", domain.OrderStagePacked) }()
	first := <-src.gate
	assert.Equal(t, domain.OrderStagePacked, first.stage)

	require.NoError(t, table.SetStage(ctx, "1001", domain.OrderStageShipped), "queued behind the in-flight update")
	row := rowFor(t, table, "1001")
	assert.Equal(t, domain.OrderStageShipped, row.Stage)
	assert.True(t, row.Pending)

	// Other rows stay interactive while 1001 is busy.
	otherDone := make(chan error, 1)
	go func() { otherDone <- table.SetStage(ctx, "1002", domain.OrderStageConfirmed) }()
	other := <-src.gate
	assert.Equal(t, "1002", other.number)
	other.release <- nil
	require.NoError(t, <-otherDone)

	first.release <- nil
	second := <-src.gate
	assert.Equal(t, domain.OrderStageShipped, second.stage)

	row = rowFor(t, table, "1001")
	assert.Equal(t, domain.OrderStagePacked, row.Order.Stage, "server has confirmed only the first update")
	assert.Equal(t, domain.OrderStageShipped, row.Stage)
	assert.True(t, row.Pending, "overlay survives until server shows shipped")

	require.NoError(t, table.Refresh(ctx))
	assert.True(t, rowFor(t, table, "1001").Pending, "refresh with packed does not clear")

	second.release <- nil
	require.NoError(t, <-done)

	row = rowFor(t, table, "1001")
	assert.Equal(t, domain.OrderStageShipped, row.Stage)
	assert.False(t, row.Pending)
	assert.False(t, row.Updating)
}

func TestOverlayClearsOnRefreshMatch(t *testing.T) {
	src := newFakeSource(order("1001", domain.OrderStageNew))
	src.gate = make(chan *updateCall)
	table := NewTable(src, "tok", zap.NewNop())
	ctx := context.Background()
	require.NoError(t, table.Refresh(ctx))

	done := make(chan error, 1)
	go func() { done <- table.SetStage(ctx, "1001", domain.OrderStageShipped) }()
	call := <-src.gate

	// Another admin already moved the order to shipped.
	src.setServerStage("1001", domain.OrderStageShipped)
	require.NoError(t, table.Refresh(ctx))
	assert.False(t, rowFor(t, table, "1001").Pending)

	call.release <- nil
	require.NoError(t, <-done)
}

func TestParseOrdering(t *testing.T) {
	assert.Equal(t, Ordering{Field: "total", Desc: true}, ParseOrdering("-total"))
	assert.Equal(t, Ordering{Field: "customer_name"}, ParseOrdering("customer_name"))
	assert.Equal(t, DefaultOrdering, ParseOrdering(""))
	assert.Equal(t, "-created_at", DefaultOrdering.String())
}
