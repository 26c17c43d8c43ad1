package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/pricing"
	"github.com/rugstore/storefront/internal/repository"
	"github.com/rugstore/storefront/pkg/errors"
)

type orderService struct {
	repos  *repository.Repositories
	rates  pricing.Rates
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, rates pricing.Rates, logger *zap.Logger) *orderService {
	return &orderService{
		repos:  repos,
		rates:  rates,
		logger: logger,
	}
}

// CreateOrder prices and stores a storefront order. userID is nil for guests.
func (s *orderService) CreateOrder(ctx context.Context, userID *uuid.UUID, req domain.CreateOrderRequest) (*domain.Order, error) {
	if !req.ShippingMethod.IsValid() {
		return nil, &errors.ErrValidation{Field: "shipping_method", Message: "unknown shipping method"}
	}
	if !req.PaymentMethod.IsValid() {
		return nil, &errors.ErrValidation{Field: "payment_method", Message: "unknown payment method"}
	}
	if len(req.Items) == 0 {
		return nil, &errors.ErrValidation{Field: "items", Message: "order has no items"}
	}

	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, &errors.ErrValidation{Field: "items.quantity", Message: "must be at least 1"}
		}
		if item.Price.IsNegative() {
			return nil, &errors.ErrValidation{Field: "items.price", Message: "must not be negative"}
		}
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	quote := s.rates.Quote(req.ShippingMethod, subtotal)
	if !quote.Total.Equal(req.Total) {
		return nil, &errors.ErrValidation{
			Field:   "total",
			Message: "expected " + quote.Total.StringFixed(2) + ", got " + req.Total.StringFixed(2),
		}
	}

	order := &domain.Order{
		UserID:         userID,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		CustomerName:   strings.TrimSpace(req.Name),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		City:           strings.TrimSpace(req.City),
		Zip:            strings.TrimSpace(req.Zip),
		Notes:          req.Notes,
		ShippingMethod: req.ShippingMethod,
		PaymentMethod:  req.PaymentMethod,
		Subtotal:       quote.Subtotal,
		ShippingCost:   quote.Shipping,
		Total:          quote.Total,
		Status:         domain.OrderStatusPending,
		Stage:          domain.OrderStageNew,
		Items:          items,
	}

	for _, f := range []struct{ name, value string }{
		{"email", order.Email},
		{"name", order.CustomerName},
		{"phone", order.Phone},
		{"address", order.Address},
		{"city", order.City},
		{"zip", order.Zip},
	} {
		if f.value == "" {
			return nil, &errors.ErrValidation{Field: f.name, Message: "is required"}
		}
	}

	if err := s.repos.Order.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logEvent(ctx, order.ID, "order_created", map[string]interface{}{
		"order_number": order.Number,
		"total":        order.Total.StringFixed(2),
		"status":       order.Status,
	})

	return order, nil
}

// GetOrder returns an order visible to the caller
func (s *orderService) GetOrder(ctx context.Context, caller Caller, number string) (*domain.Order, error) {
	order, err := s.repos.Order.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if caller.IsStaff {
		return order, nil
	}
	if order.UserID == nil || *order.UserID != caller.UserID {
		return nil, &errors.ErrForbidden{}
	}
	return order, nil
}

// ListOrders returns one page of orders for the admin table
func (s *orderService) ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderList, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = DefaultPageSize
	}
	if req.PageSize > MaxPageSize {
		req.PageSize = MaxPageSize
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, &errors.ErrValidation{Field: "status", Message: "unknown status"}
	}

	orders, count, err := s.repos.Order.List(ctx, domain.OrderFilter{
		Search:   strings.TrimSpace(req.Search),
		Status:   req.Status,
		Ordering: req.Ordering,
		Limit:    req.PageSize,
		Offset:   (req.Page - 1) * req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	// Page 1 is always valid, even when nothing matches.
	if req.Page > 1 && len(orders) == 0 {
		return nil, ErrInvalidPage
	}

	return &OrderList{
		Orders:   orders,
		Count:    count,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// UpdateOrder applies a partial stage/status change
func (s *orderService) UpdateOrder(ctx context.Context, caller Caller, number string, req domain.UpdateOrderRequest) (*domain.Order, error) {
	if req.Stage == nil && req.Status == nil {
		return nil, &errors.ErrValidation{Message: "nothing to update"}
	}
	if req.Stage != nil && !req.Stage.IsValid() {
		return nil, &errors.ErrValidation{Field: "stage", Message: "unknown stage " + string(*req.Stage)}
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, &errors.ErrValidation{Field: "status", Message: "unknown status " + string(*req.Status)}
	}

	order, err := s.repos.Order.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	status, stage := order.Status, order.Stage
	if req.Status != nil {
		status = *req.Status
	}
	if req.Stage != nil {
		stage = *req.Stage
	}

	// Validate state transition
	if status != order.Status && !order.Status.CanTransitionTo(status) {
		return nil, &errors.ErrInvalidStateTransition{
			From: string(order.Status),
			To:   string(status),
		}
	}
	if status == order.Status && stage == order.Stage {
		return order, nil
	}

	// Both fields land or neither does
	if err := s.repos.Order.Update(ctx, order.ID, status, stage); err != nil {
		return nil, err
	}

	if status != order.Status {
		s.logEvent(ctx, order.ID, "status_change", map[string]interface{}{
			"from": order.Status,
			"to":   status,
			"by":   caller.UserID.String(),
		})
	}
	if stage != order.Stage {
		s.logEvent(ctx, order.ID, "stage_change", map[string]interface{}{
			"from": order.Stage,
			"to":   stage,
			"by":   caller.UserID.String(),
		})
	}

	return s.repos.Order.GetByNumber(ctx, number)
}

// OrderEvents returns the audit trail of an order
func (s *orderService) OrderEvents(ctx context.Context, number string) ([]*domain.OrderEvent, error) {
	order, err := s.repos.Order.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.repos.OrderEvent.ListByOrderID(ctx, order.ID)
}

func (s *orderService) logEvent(ctx context.Context, orderID uuid.UUID, eventType string, data map[string]interface{}) {
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: eventType,
		EventData: data,
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
