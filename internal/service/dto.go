package service

import (
	"github.com/google/uuid"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/pkg/errors"
)

// ErrInvalidPage is returned when a page past the last one is requested
var ErrInvalidPage = &errors.ErrNotFound{Resource: "page", ID: "invalid page"}

// MaxPageSize caps the admin listing page size
const MaxPageSize = 100

// DefaultPageSize is used when the caller does not ask for one
const DefaultPageSize = 20

// ListOrdersRequest holds the admin listing query
type ListOrdersRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   domain.OrderStatus
	Ordering string
}

// OrderList is one page of orders with the total match count
type OrderList struct {
	Orders   []*domain.Order
	Count    int
	Page     int
	PageSize int
}

// HasNext reports whether another page follows this one
func (l *OrderList) HasNext() bool {
	return l.Page*l.PageSize < l.Count
}

// HasPrevious reports whether a page precedes this one
func (l *OrderList) HasPrevious() bool {
	return l.Page > 1
}

// Caller identifies who is making a request
type Caller struct {
	UserID  uuid.UUID
	IsStaff bool
}
