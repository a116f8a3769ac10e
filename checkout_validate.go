package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func normalizeValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewInvalidRequestError(
			fmt.Sprintf("%s failed on the %q rule", fe.Field(), fe.Tag()),
			WithOffendingParam("$."+fe.Field()),
		)
	}
	return NewInvalidRequestError(err.Error())
}

func validateItems(items []Item) error {
	for i, item := range items {
		if item.ID == "" {
			return NewInvalidRequestError(
				fmt.Sprintf("items[%d]: id is required", i),
				WithOffendingParam(fmt.Sprintf("$.items[%d].id", i)),
			)
		}
		if item.Quantity <= 0 {
			return NewInvalidRequestError(
				fmt.Sprintf("items[%d]: quantity must be positive", i),
				WithOffendingParam(fmt.Sprintf("$.items[%d].quantity", i)),
			)
		}
	}
	return nil
}

// Validate ensures CheckoutSessionCreateRequest satisfies required schema constraints.
func (r CheckoutSessionCreateRequest) Validate() error {
	if len(r.Items) == 0 {
		return NewInvalidRequestError("items must contain at least one entry", WithOffendingParam("$.items"))
	}
	if err := validateItems(r.Items); err != nil {
		return err
	}
	if r.Buyer != nil {
		if err := validate.Struct(r.Buyer); err != nil {
			return normalizeValidationError(err)
		}
	}
	if r.FulfillmentAddress != nil {
		if err := validate.Struct(r.FulfillmentAddress); err != nil {
			return normalizeValidationError(err)
		}
	}
	return nil
}

// Validate ensures CheckoutSessionUpdateRequest maintains schema constraints.
// Nulled fields carry no value to check; the engine decides what a clear means.
func (r CheckoutSessionUpdateRequest) Validate() error {
	if r.Items != nil {
		if err := validateItems(*r.Items); err != nil {
			return err
		}
	}
	if r.Buyer.Set && !r.Buyer.Null {
		if err := validate.Struct(r.Buyer.Value); err != nil {
			return normalizeValidationError(err)
		}
	}
	if r.FulfillmentAddress.Set && !r.FulfillmentAddress.Null {
		if err := validate.Struct(r.FulfillmentAddress.Value); err != nil {
			return normalizeValidationError(err)
		}
	}
	if r.FulfillmentOptionID.Set && !r.FulfillmentOptionID.Null && r.FulfillmentOptionID.Value == "" {
		return NewInvalidRequestError("fulfillment_option_id must not be empty", WithOffendingParam("$.fulfillment_option_id"))
	}
	return nil
}

// Validate ensures CheckoutSessionCompleteRequest satisfies payment requirements.
func (r CheckoutSessionCompleteRequest) Validate() error {
	if r.PaymentData.Token == "" {
		return NewInvalidRequestError("payment_data.token is required", WithOffendingParam("$.payment_data.token"))
	}
	if r.Buyer != nil {
		if err := validate.Struct(r.Buyer); err != nil {
			return normalizeValidationError(err)
		}
	}
	if r.PaymentData.BillingAddress != nil {
		if err := validate.Struct(r.PaymentData.BillingAddress); err != nil {
			return normalizeValidationError(err)
		}
	}
	return nil
}
