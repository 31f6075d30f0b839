package service

import (
	"protonshop/internal/shop"

	"github.com/pkg/errors"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidShippingCost = shop.ErrInvalidShippingCost
	ErrEmptyCart           = errors.New("cart is empty")
	ErrImportNotConfirmed  = errors.New("import requires explicit confirmation")
	ErrDuplicateProduct    = errors.New("a product with this external_id already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrSessionExpired      = errors.New("session expired")
)
