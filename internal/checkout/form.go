package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/rugstore/storefront/internal/domain"
)

// ContactInfo holds the step-one fields
type ContactInfo struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required,notblank"`
	Address string `json:"address" validate:"required,notblank"`
	City    string `json:"city" validate:"required,notblank"`
	Zip     string `json:"zip" validate:"required,notblank"`
	Phone   string `json:"phone" validate:"required,notblank"`
}

// DeliveryOptions holds the step-two fields
type DeliveryOptions struct {
	ShippingMethod domain.ShippingMethod `json:"shipping_method" validate:"required,oneof=standard express"`
	PaymentMethod  domain.PaymentMethod  `json:"payment_method" validate:"required,oneof=cash_on_delivery card"`
}

// Form is the checkout form state
type Form struct {
	ContactInfo
	DeliveryOptions
	Notes string `json:"notes,omitempty"`
}

// ValidationError maps field names to messages. It never leaves the client.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "invalid checkout form: " + strings.Join(parts, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// required alone accepts whitespace-only input
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

func validateSection(section interface{}) error {
	err := validate.Struct(section)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}

// ImportProfile fills empty contact fields from a saved profile
func (f *Form) ImportProfile(email string, p domain.Profile) {
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&f.Email, email)
	fill(&f.Name, p.Name)
	fill(&f.Phone, p.Phone)
	fill(&f.Address, p.Address)
	fill(&f.City, p.City)
	fill(&f.Zip, p.Zip)
}
