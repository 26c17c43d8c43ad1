// Package submission turns a cart and a checkout form into a created order.
package submission

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/cart"
	"github.com/rugstore/storefront/internal/checkout"
	"github.com/rugstore/storefront/internal/domain"
)

var (
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")
	ErrEmptyCart          = checkout.ErrEmptyCart
)

// OrderCreator is the create-order endpoint
type OrderCreator interface {
	CreateOrder(ctx context.Context, token string, req domain.CreateOrderRequest) (*domain.OrderAck, error)
}

// SubmissionError wraps a failed create-order call. The cart is untouched.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

type Adapter struct {
	creator  OrderCreator
	cart     *cart.Store
	logger   *zap.Logger
	inFlight atomic.Bool
}

func NewAdapter(creator OrderCreator, store *cart.Store, logger *zap.Logger) *Adapter {
	return &Adapter{
		creator: creator,
		cart:    store,
		logger:  logger,
	}
}

// ConfirmationPath is where the shopper lands after a successful order
func ConfirmationPath(orderNumber string) string {
	return "/orders/" + orderNumber + "/confirmation"
}

// Submit creates the order and clears the cart on success. Only one
// submission may be in flight at a time.
func (a *Adapter) Submit(ctx context.Context, order checkout.Order) (*checkout.Result, error) {
	if !a.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer a.inFlight.Store(false)

	items := a.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	req := BuildRequest(items, order)

	ack, err := a.creator.CreateOrder(ctx, order.Token, req)
	if err != nil {
		a.logger.Warn("Order submission rejected",
			zap.Int("items", len(items)),
			zap.Error(err),
		)
		return nil, &SubmissionError{Err: err}
	}

	a.cart.Clear()
	a.logger.Info("Order submitted",
		zap.String("order_number", ack.OrderNumber),
		zap.String("total", ack.Total.StringFixed(2)),
	)

	return &checkout.Result{
		Ack:      ack,
		Redirect: ConfirmationPath(ack.OrderNumber),
	}, nil
}

// Submitting reports whether a submission is currently in flight
func (a *Adapter) Submitting() bool {
	return a.inFlight.Load()
}

// BuildRequest maps line items and the checkout form to the API payload
func BuildRequest(items []cart.LineItem, order checkout.Order) domain.CreateOrderRequest {
	reqItems := make([]domain.CreateOrderItem, 0, len(items))
	for _, item := range items {
		reqItems = append(reqItems, domain.CreateOrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		})
	}

	f := order.Form
	return domain.CreateOrderRequest{
		Email:          f.Email,
		Name:           f.Name,
		Phone:          f.Phone,
		Address:        f.Address,
		City:           f.City,
		Zip:            f.Zip,
		Notes:          f.Notes,
		ShippingMethod: f.ShippingMethod,
		PaymentMethod:  f.PaymentMethod,
		Total:          order.Quote.Total,
		Items:          reqItems,
	}
}
