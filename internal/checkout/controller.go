// Package checkout implements the two-step checkout wizard.
//
// The controller starts on StepContactAndShipping, moves forward on Continue
// once the contact fields validate, back on Back, and ends in StepSubmitted
// after PlaceOrder succeeds. Only PlaceOrder talks to the network.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/localstore"
	"github.com/rugstore/storefront/internal/pricing"
)

// Path is where the shopper resumes after logging in
const Path = "/checkout"

type Step int

const (
	StepContactAndShipping Step = iota + 1
	StepMethodAndPayment
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepContactAndShipping:
		return "contact_and_shipping"
	case StepMethodAndPayment:
		return "method_and_payment"
	case StepSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var (
	ErrLoginRequired = errors.New("login required before checkout")
	ErrEmptyCart     = errors.New("cart is empty")
	ErrWrongStep     = errors.New("action not allowed in the current checkout step")
)

// Cart is the part of the cart store the controller reads
type Cart interface {
	Subtotal() decimal.Decimal
	IsEmpty() bool
}

// Session exposes the signed-in shopper's bearer token, empty when anonymous
type Session interface {
	Token() string
}

// KeyValue stores the return path across the login redirect
type KeyValue interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
}

// Order is what PlaceOrder hands to the Submitter
type Order struct {
	Form  Form
	Quote pricing.Quote
	Token string
}

// Result is a confirmed submission
type Result struct {
	Ack      *domain.OrderAck
	Redirect string
}

type Submitter interface {
	Submit(ctx context.Context, order Order) (*Result, error)
}

type Controller struct {
	mu        sync.Mutex
	step      Step
	form      Form
	cart      Cart
	rates     pricing.Rates
	session   Session
	kv        KeyValue
	submitter Submitter
	logger    *zap.Logger
}

func NewController(cart Cart, rates pricing.Rates, session Session, kv KeyValue, submitter Submitter, logger *zap.Logger) *Controller {
	return &Controller{
		step:      StepContactAndShipping,
		form:      newForm(),
		cart:      cart,
		rates:     rates,
		session:   session,
		kv:        kv,
		submitter: submitter,
		logger:    logger,
	}
}

func newForm() Form {
	return Form{DeliveryOptions: DeliveryOptions{
		ShippingMethod: domain.ShippingStandard,
		PaymentMethod:  domain.PaymentCashOnDelivery,
	}}
}

// Begin enters checkout. An anonymous shopper gets ErrLoginRequired and the
// checkout path is stored so ResumePath can send them back after login.
func (c *Controller) Begin() error {
	if c.session.Token() == "" {
		raw, _ := json.Marshal(Path)
		if err := c.kv.Save(localstore.KeyReturnTo, raw); err != nil {
			c.logger.Warn("Failed to store checkout return path", zap.Error(err))
		}
		return ErrLoginRequired
	}
	if c.cart.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}

// ResumePath returns and forgets the path stored before a login redirect
func ResumePath(kv KeyValue) (string, bool) {
	raw, err := kv.Load(localstore.KeyReturnTo)
	if err != nil {
		return "", false
	}
	_ = kv.Delete(localstore.KeyReturnTo)

	var path string
	if err := json.Unmarshal(raw, &path); err != nil || path == "" {
		return "", false
	}
	return path, true
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Form returns a copy of the current form
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Update edits the form in place. It never changes the step.
func (c *Controller) Update(fn func(*Form)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.form)
}

// ImportProfile pre-fills empty contact fields from the shopper's profile
func (c *Controller) ImportProfile(p domain.ProfileView) {
	c.Update(func(f *Form) { f.ImportProfile(p.Email, p.Profile) })
}

// Continue moves to StepMethodAndPayment if the contact fields are valid
func (c *Controller) Continue() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepContactAndShipping {
		return ErrWrongStep
	}
	if err := validateSection(c.form.ContactInfo); err != nil {
		return err
	}
	c.step = StepMethodAndPayment
	return nil
}

func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepMethodAndPayment {
		return ErrWrongStep
	}
	c.step = StepContactAndShipping
	return nil
}

// Abandon discards the form and returns to the first step
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = StepContactAndShipping
	c.form = newForm()
}

// Quote prices the current cart with the selected shipping method
func (c *Controller) Quote() pricing.Quote {
	c.mu.Lock()
	method := c.form.ShippingMethod
	c.mu.Unlock()
	return c.rates.Quote(method, c.cart.Subtotal())
}

// PlaceOrder submits the order. On failure the step and form are unchanged.
func (c *Controller) PlaceOrder(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.step != StepMethodAndPayment {
		c.mu.Unlock()
		return nil, ErrWrongStep
	}
	form := c.form
	c.mu.Unlock()

	if err := validateSection(form.ContactInfo); err != nil {
		return nil, err
	}
	if err := validateSection(form.DeliveryOptions); err != nil {
		return nil, err
	}
	if c.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	order := Order{
		Form:  form,
		Quote: c.rates.Quote(form.ShippingMethod, c.cart.Subtotal()),
		Token: c.session.Token(),
	}
	result, err := c.submitter.Submit(ctx, order)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.step = StepSubmitted
	c.form = newForm()
	c.mu.Unlock()

	c.logger.Info("Order placed", zap.String("order_number", result.Ack.OrderNumber))
	return result, nil
}
