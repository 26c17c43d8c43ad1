package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rugstore/storefront/internal/domain"
)

// Register creates a shopper account
func (c *Client) Register(ctx context.Context, creds domain.Credentials) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/register", "", nil, creds, nil)
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.TokenResponse, error) {
	var resp domain.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetProfile(ctx context.Context, token string) (*domain.ProfileView, error) {
	var resp domain.ProfileView
	if err := c.do(ctx, http.MethodGet, "/v1/profile", token, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, profile domain.Profile) (*domain.ProfileView, error) {
	var resp domain.ProfileView
	if err := c.do(ctx, http.MethodPatch, "/v1/profile", token, nil, profile, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateOrder submits an order. token may be empty for guest checkout.
func (c *Client) CreateOrder(ctx context.Context, token string, req domain.CreateOrderRequest) (*domain.OrderAck, error) {
	var resp domain.OrderAck
	if err := c.do(ctx, http.MethodPost, "/v1/orders", token, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetOrder(ctx context.Context, token, number string) (*domain.OrderView, error) {
	var resp domain.OrderView
	if err := c.do(ctx, http.MethodGet, "/v1/orders/"+url.PathEscape(number), token, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOrdersParams are the admin listing query parameters
type ListOrdersParams struct {
	Page     int
	PageSize int
	Search   string
	Status   domain.OrderStatus
	Ordering string
}

// Values encodes the parameters, omitting empty ones
func (p ListOrdersParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	if p.Ordering != "" {
		v.Set("ordering", p.Ordering)
	}
	return v
}

func (c *Client) ListOrders(ctx context.Context, token string, params ListOrdersParams) (*domain.OrderPage, error) {
	var resp domain.OrderPage
	if err := c.do(ctx, http.MethodGet, "/v1/admin/orders", token, params.Values(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateOrder(ctx context.Context, token, number string, req domain.UpdateOrderRequest) (*domain.OrderView, error) {
	var resp domain.OrderView
	if err := c.do(ctx, http.MethodPatch, "/v1/admin/orders/"+url.PathEscape(number), token, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOrderEvents returns the audit trail of an order (staff only)
func (c *Client) ListOrderEvents(ctx context.Context, token, number string) ([]domain.OrderEventView, error) {
	var resp struct {
		Events []domain.OrderEventView `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/admin/orders/"+url.PathEscape(number)+"/events", token, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}
