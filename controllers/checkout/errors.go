package checkoutControllers

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrNothingToPay         = errors.New("cart total must be greater than zero")
	ErrMissingEmail         = errors.New("an email address is required to pay")
	ErrUnknownReference     = errors.New("unknown payment reference")
	ErrPaymentNotSuccessful = errors.New("payment was not successful")
	ErrIdempotencyKeyUsed   = errors.New("idempotency key already used for a finished checkout")
	ErrAmountMismatch       = errors.New("amount paid does not cover the cart total")
)
