package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("invalid input")
	ErrMalformedRequest   = errors.New("product ids and quantities must match")
	ErrProductNotFound    = errors.New("product not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrPermissionDenied   = errors.New("not enough permissions")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
)

// ProductError ties a failure to the product that caused it.
type ProductError struct {
	ProductID int64
	Name      string
	Err       error
}

func (e *ProductError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("product %d (%s): %v", e.ProductID, e.Name, e.Err)
	}
	return fmt.Sprintf("product %d: %v", e.ProductID, e.Err)
}

func (e *ProductError) Unwrap() error {
	return e.Err
}

func NewProductError(productID int64, name string, err error) *ProductError {
	return &ProductError{ProductID: productID, Name: name, Err: err}
}
