package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// The types below are the JSON contract shared by the API and its client.

// CreateOrderRequest represents the order submission payload
type CreateOrderRequest struct {
	Email          string            `json:"email" binding:"required,email"`
	Name           string            `json:"name" binding:"required,notblank"`
	Phone          string            `json:"phone" binding:"required,notblank"`
	Address        string            `json:"address" binding:"required,notblank"`
	City           string            `json:"city" binding:"required,notblank"`
	Zip            string            `json:"zip" binding:"required,notblank"`
	Notes          string            `json:"notes,omitempty"`
	ShippingMethod ShippingMethod    `json:"shipping_method" binding:"required"`
	PaymentMethod  PaymentMethod     `json:"payment_method" binding:"required"`
	Total          decimal.Decimal   `json:"total"`
	Items          []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderItem is one {product_id, quantity, price, size} tuple
type CreateOrderItem struct {
	ProductID string          `json:"product_id" binding:"required"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
}

// OrderAck is returned after a successful order creation
type OrderAck struct {
	OrderNumber string          `json:"order_number"`
	Status      OrderStatus     `json:"status"`
	Stage       OrderStage      `json:"stage"`
	Total       decimal.Decimal `json:"total"`
}

// OrderView is the JSON representation of an order
type OrderView struct {
	Number         string          `json:"order_number"`
	CustomerName   string          `json:"customer_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	Zip            string          `json:"zip"`
	Notes          string          `json:"notes,omitempty"`
	ShippingMethod ShippingMethod  `json:"shipping_method"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	Total          decimal.Decimal `json:"total"`
	Status         OrderStatus     `json:"status"`
	Stage          OrderStage      `json:"stage"`
	Items          []OrderItemView `json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderItemView is the JSON representation of an order line
type OrderItemView struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderPage is one page of the admin order listing
type OrderPage struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []OrderView `json:"results"`
}

// UpdateOrderRequest is a partial admin update
type UpdateOrderRequest struct {
	Stage  *OrderStage  `json:"stage,omitempty"`
	Status *OrderStatus `json:"status,omitempty"`
}

// OrderEventView is one entry of an order's audit trail
type OrderEventView struct {
	EventType string                 `json:"event_type"`
	EventData map[string]interface{} `json:"event_data"`
	CreatedAt time.Time              `json:"created_at"`
}

// Credentials is the login and registration payload
type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// TokenResponse is returned by login
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfileView is the JSON representation of the signed-in user's profile
type ProfileView struct {
	Email string `json:"email"`
	Profile
}

// ToView converts an order into its JSON representation
func (o *Order) ToView() OrderView {
	items := make([]OrderItemView, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemView{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return OrderView{
		Number:         o.Number,
		CustomerName:   o.CustomerName,
		Email:          o.Email,
		Phone:          o.Phone,
		Address:        o.Address,
		City:           o.City,
		Zip:            o.Zip,
		Notes:          o.Notes,
		ShippingMethod: o.ShippingMethod,
		PaymentMethod:  o.PaymentMethod,
		Subtotal:       o.Subtotal,
		ShippingCost:   o.ShippingCost,
		Total:          o.Total,
		Status:         o.Status,
		Stage:          o.Stage,
		Items:          items,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
