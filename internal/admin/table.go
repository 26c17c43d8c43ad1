// Package admin implements the paginated admin order table with inline,
// optimistic stage updates.
//
// Stage updates run in parallel across rows and one at a time per row. While
// a row has a request in flight, newer stage choices for it replace the queued
// value and are sent when the current request finishes. The pending overlay
// entry for a row clears only when authoritative order data shows the same
// stage; a rejected update falls back to the last server value unless a newer
// choice superseded it.
package admin

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/optimistic"
	"github.com/rugstore/storefront/internal/storefront"
)

// OrderSource is the admin order API
type OrderSource interface {
	ListOrders(ctx context.Context, token string, params storefront.ListOrdersParams) (*domain.OrderPage, error)
	UpdateOrder(ctx context.Context, token, number string, req domain.UpdateOrderRequest) (*domain.OrderView, error)
}

// FetchError is a failed listing; the previous rows stay visible
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load orders: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Row is an order with pending stage changes applied
type Row struct {
	Order domain.OrderView
	// Stage is the value to display: the pending choice if any
	Stage domain.OrderStage
	// Pending is true until server data confirms Stage
	Pending bool
	// Updating is true while a request for this row is in flight; the row's
	// stage control should be disabled
	Updating bool
}

type proposal struct {
	stage domain.OrderStage
	token optimistic.Token
}

type rowState struct {
	queued *proposal
}

type Table struct {
	source OrderSource
	token  string
	logger *zap.Logger

	mu         sync.Mutex
	query      Query
	generation uint64
	orders     []domain.OrderView
	count      int
	hasNext    bool
	hasPrev    bool
	fetchErr   error
	inflight   map[string]*rowState

	overlay *optimistic.Overlay[string, domain.OrderStage]
}

func NewTable(source OrderSource, token string, logger *zap.Logger) *Table {
	return &Table{
		source:   source,
		token:    token,
		logger:   logger,
		query:    DefaultQuery(),
		inflight: make(map[string]*rowState),
		overlay:  optimistic.New[string, domain.OrderStage](),
	}
}

func (t *Table) Query() Query {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.query
}

// setQuery applies fn and resets to page one when the query changed.
func (t *Table) setQuery(fn func(q *Query)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.query
	fn(&t.query)
	if t.query != before {
		t.query.Page = 1
		t.generation++
	}
}

func (t *Table) SetSearch(search string) {
	t.setQuery(func(q *Query) { q.Search = search })
}

func (t *Table) SetStatus(status domain.OrderStatus) {
	t.setQuery(func(q *Query) { q.Status = status })
}

func (t *Table) SetOrdering(o Ordering) {
	t.setQuery(func(q *Query) { q.Ordering = o })
}

func (t *Table) SetPageSize(size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	t.setQuery(func(q *Query) { q.PageSize = size })
}

// SetPage moves to page n (at least 1) without touching filters
func (t *Table) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.query.Page != n {
		t.query.Page = n
		t.generation++
	}
}

// NextPage advances if the last fetch reported a next page
func (t *Table) NextPage() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasNext {
		return false
	}
	t.query.Page++
	t.generation++
	return true
}

// PrevPage goes back if the last fetch reported a previous page
func (t *Table) PrevPage() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasPrev || t.query.Page <= 1 {
		return false
	}
	t.query.Page--
	t.generation++
	return true
}

// Refresh loads the current page. A response for a query that has since
// changed is discarded.
func (t *Table) Refresh(ctx context.Context) error {
	t.mu.Lock()
	query := t.query
	gen := t.generation
	t.mu.Unlock()

	page, err := t.source.ListOrders(ctx, t.token, query.params())

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		t.logger.Debug("Discarding stale order page", zap.Int("page", query.Page))
		return nil
	}
	if err != nil {
		t.fetchErr = &FetchError{Err: err}
		t.logger.Warn("Failed to load orders", zap.Int("page", query.Page), zap.Error(err))
		return t.fetchErr
	}

	t.fetchErr = nil
	t.orders = page.Results
	t.count = page.Count
	t.hasNext = page.Next != nil
	t.hasPrev = page.Previous != nil

	for _, o := range page.Results {
		t.overlay.Reconcile(o.Number, o.Stage)
	}
	return nil
}

// FetchError returns the error of the last Refresh, if it failed
func (t *Table) FetchError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fetchErr
}

// Count is the total number of orders matching the query
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func (t *Table) HasNext() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasNext
}

func (t *Table) HasPrev() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasPrev
}

// Rows returns the cached orders with the pending overlay applied
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]Row, len(t.orders))
	for i, o := range t.orders {
		_, updating := t.inflight[o.Number]
		rows[i] = Row{
			Order:    o,
			Stage:    t.overlay.Value(o.Number, o.Stage),
			Pending:  t.overlay.Pending(o.Number),
			Updating: updating,
		}
	}
	return rows
}

// SetStage shows stage for the order immediately and sends the update. If
// the row already has a request in flight the value is queued and SetStage
// returns nil at once; the in-flight caller sends it. Otherwise SetStage
// returns the error of the last request it sent for the row.
func (t *Table) SetStage(ctx context.Context, number string, stage domain.OrderStage) error {
	if !stage.IsValid() {
		return fmt.Errorf("invalid stage %q", stage)
	}

	t.mu.Lock()
	tok := t.overlay.Propose(number, stage, t.serverStage(number))
	if rs, busy := t.inflight[number]; busy {
		rs.queued = &proposal{stage: stage, token: tok}
		t.mu.Unlock()
		return nil
	}
	t.inflight[number] = &rowState{}
	t.mu.Unlock()

	current := proposal{stage: stage, token: tok}
	for {
		s := current.stage
		view, err := t.source.UpdateOrder(ctx, t.token, number, domain.UpdateOrderRequest{Stage: &s})

		t.mu.Lock()
		if err != nil {
			if base, rolledBack := t.overlay.Reject(number, current.token); rolledBack {
				t.logger.Warn("Stage update rejected, reverted",
					zap.String("order_number", number),
					zap.String("stage", string(current.stage)),
					zap.String("reverted_to", string(base)),
					zap.Error(err),
				)
			}
		} else {
			t.applyOrder(*view)
			t.overlay.Reconcile(number, view.Stage)
		}

		rs := t.inflight[number]
		if rs.queued == nil {
			delete(t.inflight, number)
			t.mu.Unlock()
			return err
		}
		current = *rs.queued
		rs.queued = nil
		t.mu.Unlock()
	}
}

// serverStage must be called with t.mu held.
func (t *Table) serverStage(number string) domain.OrderStage {
	for _, o := range t.orders {
		if o.Number == number {
			return o.Stage
		}
	}
	return ""
}

// applyOrder must be called with t.mu held.
func (t *Table) applyOrder(view domain.OrderView) {
	for i := range t.orders {
		if t.orders[i].Number == view.Number {
			t.orders[i] = view
			return
		}
	}
}
