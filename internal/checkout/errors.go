package checkout

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrSessionNotFound      = errors.New("checkout session not found")
	ErrConfirmationInFlight = errors.New("order confirmation already in progress")
	ErrPaymentFailed        = errors.New("payment failed")
)
