package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a shopper or staff account
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsStaff      bool
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the saved fields a shopper can import at checkout
type Profile struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// Session is a bearer token issued at login
type Session struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Order represents a placed storefront order
type Order struct {
	ID             uuid.UUID
	Number         string
	UserID         *uuid.UUID
	Email          string
	CustomerName   string
	Phone          string
	Address        string
	City           string
	Zip            string
	Notes          string
	ShippingMethod ShippingMethod
	PaymentMethod  PaymentMethod
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	Total          decimal.Decimal
	Status         OrderStatus
	Stage          OrderStage
	Items          []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderItem represents a line of an order
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID string
	VariantID string
	Name      string
	Size      string
	Color     string
	Quantity  int
	Price     decimal.Decimal
	CreatedAt time.Time
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}

// OrderFilter holds the admin listing parameters
type OrderFilter struct {
	Search   string
	Status   OrderStatus
	Ordering string
	Limit    int
	Offset   int
}
