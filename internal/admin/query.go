package admin

import (
	"strings"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/storefront"
)

const DefaultPageSize = 20

// Ordering is a sort column and direction
type Ordering struct {
	Field string
	Desc  bool
}

// DefaultOrdering lists the newest orders first
var DefaultOrdering = Ordering{Field: "created_at", Desc: true}

// ParseOrdering reads the "-field" / "field" form used by the API
func ParseOrdering(s string) Ordering {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultOrdering
	}
	if strings.HasPrefix(s, "-") {
		return Ordering{Field: s[1:], Desc: true}
	}
	return Ordering{Field: s}
}

func (o Ordering) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// Query is the table's filter, sort and pagination state
type Query struct {
	Page     int
	PageSize int
	Search   string
	Status   domain.OrderStatus
	Ordering Ordering
}

func DefaultQuery() Query {
	return Query{
		Page:     1,
		PageSize: DefaultPageSize,
		Ordering: DefaultOrdering,
	}
}

func (q Query) params() storefront.ListOrdersParams {
	return storefront.ListOrdersParams{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		Status:   q.Status,
		Ordering: q.Ordering.String(),
	}
}
