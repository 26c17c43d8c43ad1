// Package memory provides in-process repositories for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/repository"
	apperrors "github.com/rugstore/storefront/pkg/errors"
)

// FirstOrderNumber matches the PostgreSQL sequence start
const FirstOrderNumber = 1001

// NewRepositories wires a fresh set of in-memory repositories
func NewRepositories() *repository.Repositories {
	orders := &orderRepository{byID: make(map[uuid.UUID]*domain.Order), next: FirstOrderNumber}
	return &repository.Repositories{
		User:       &userRepository{byID: make(map[uuid.UUID]*domain.User)},
		Session:    &sessionRepository{byHash: make(map[string]*domain.Session)},
		Order:      orders,
		OrderEvent: &orderEventRepository{},
	}
}

type userRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*domain.User
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.byID {
		if u.Email == user.Email {
			return &apperrors.ErrConflict{Resource: "user", Message: "email already registered"}
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	r.byID[user.ID] = &stored
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	copied := *u
	return &copied, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &apperrors.ErrNotFound{Resource: "user", ID: email}
}

func (r *userRepository) UpdateProfile(_ context.Context, id uuid.UUID, profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return &apperrors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	u.Profile = profile
	u.UpdatedAt = time.Now()
	return nil
}

type sessionRepository struct {
	mu     sync.RWMutex
	byHash map[string]*domain.Session
}

func (r *sessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	stored := *session
	r.byHash[session.TokenHash] = &stored
	return nil
}

func (r *sessionRepository) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byHash[tokenHash]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "session", ID: "token"}
	}
	copied := *s
	return &copied, nil
}

func (r *sessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := time.Now()
	for hash, s := range r.byHash {
		if s.ExpiresAt.Before(now) {
			delete(r.byHash, hash)
			n++
		}
	}
	return n, nil
}

type orderRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*domain.Order
	next int
}

func cloneOrder(o *domain.Order) *domain.Order {
	copied := *o
	copied.Items = append([]domain.OrderItem(nil), o.Items...)
	return &copied
}

func (r *orderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.Number = strconv.Itoa(r.next)
	r.next++
	order.CreatedAt, order.UpdatedAt = now, now
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
		order.Items[i].CreatedAt = now
	}

	r.byID[order.ID] = cloneOrder(order)
	return nil
}

func (r *orderRepository) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.byID {
		if o.Number == number {
			return cloneOrder(o), nil
		}
	}
	return nil, &apperrors.ErrNotFound{Resource: "order", ID: number}
}

func (r *orderRepository) List(_ context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var matched []*domain.Order
	for _, o := range r.byID {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.Number), search) &&
			!strings.Contains(strings.ToLower(o.CustomerName), search) &&
			!strings.Contains(strings.ToLower(o.Email), search) {
			continue
		}
		matched = append(matched, o)
	}

	sortOrders(matched, filter.Ordering)

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}

	page := make([]*domain.Order, 0, end-start)
	for _, o := range matched[start:end] {
		page = append(page, cloneOrder(o))
	}
	return page, total, nil
}

func sortOrders(orders []*domain.Order, ordering string) {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	if _, ok := repository.OrderingColumns[field]; !ok {
		field, desc = "created_at", true
	}

	less := func(a, b *domain.Order) int {
		switch field {
		case "total":
			return a.Total.Cmp(b.Total)
		case "order_number":
			an, _ := strconv.Atoi(a.Number)
			bn, _ := strconv.Atoi(b.Number)
			return an - bn
		case "customer_name":
			return strings.Compare(a.CustomerName, b.CustomerName)
		case "status":
			return strings.Compare(string(a.Status), string(b.Status))
		case "stage":
			return strings.Compare(string(a.Stage), string(b.Stage))
		default:
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			an, _ := strconv.Atoi(a.Number)
			bn, _ := strconv.Atoi(b.Number)
			return an - bn
		}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		c := less(orders[i], orders[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func (r *orderRepository) Update(_ context.Context, id uuid.UUID, status domain.OrderStatus, stage domain.OrderStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return &apperrors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	o.Status = status
	o.Stage = stage
	o.UpdatedAt = time.Now()
	return nil
}

type orderEventRepository struct {
	mu     sync.RWMutex
	events []*domain.OrderEvent
}

func (r *orderEventRepository) Create(_ context.Context, event *domain.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *orderEventRepository) ListByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.OrderEvent
	for _, e := range r.events {
		if e.OrderID == orderID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}
