package domain

import "errors"

// Not-found errors map to 404 at the HTTP boundary.
var (
	ErrCartNotFound     = errors.New("no cart found for this customer")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Validation errors map to 400.
var (
	ErrEmptyCart       = errors.New("your cart is empty")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidComment  = errors.New("review comment is required and must be at most 200 characters")
)

// Conflict errors: a rule held at read time no longer holds at write time,
// or a state-machine edge does not exist. Map to 400 with a conflict code.
var (
	ErrInsufficientStock   = errors.New("insufficient stock for product")
	ErrProductUnavailable  = errors.New("product is not available")
	ErrQuantityCapExceeded = errors.New("quantity exceeds per-order limit for product")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrDiscountOutOfBounds = errors.New("discount amount out of bounds")
)

// ErrSignatureMismatch maps to 401 on the payment webhook.
var ErrSignatureMismatch = errors.New("webhook signature verification failed")
