package validation

import (
	"errors"
	"fmt"
	"reflect"

	"storefront/internal/domain/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return &Validator{validate: v}
}

// decimalValue lets numeric tags such as gte=0 apply to decimal fields.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func (v *Validator) ValidateProduct(product model.Product) error {
	return v.check(product)
}

func (v *Validator) ValidateOrder(req model.OrderRequest) error {
	return v.check(req)
}

func (v *Validator) ValidateCredentials(creds model.Credentials) error {
	return v.check(creds)
}

func (v *Validator) check(s any) error {
	err := v.validate.Struct(s)
	if err != nil {
		var invalidErr *validator.InvalidValidationError
		if errors.As(err, &invalidErr) {
			return err
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
