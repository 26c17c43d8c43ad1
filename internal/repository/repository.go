package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/rugstore/storefront/internal/domain"
)

// Repositories groups every repository the services depend on
type Repositories struct {
	User       UserRepository
	Session    SessionRepository
	Order      OrderRepository
	OrderEvent OrderEventRepository
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.Profile) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	// Create stores the order and its items and assigns ID and Number
	Create(ctx context.Context, order *domain.Order) error
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	// List returns one page of orders and the total number matching filter
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error)
	// Update writes status and stage together in one statement
	Update(ctx context.Context, id uuid.UUID, status domain.OrderStatus, stage domain.OrderStage) error
}

type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// OrderingColumns maps the accepted ordering fields to SQL columns
var OrderingColumns = map[string]string{
	"created_at":    "created_at",
	"total":         "total",
	"order_number":  "order_number::bigint", // stored as text
	"customer_name": "customer_name",
	"status":        "status",
	"stage":         "stage",
}
