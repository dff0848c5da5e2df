package service

import "errors"

var (
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrCannotConfirm      = errors.New("order cannot be confirmed as received")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidReview      = errors.New("invalid review")
	ErrAlreadyReviewed    = errors.New("product already reviewed")
	ErrEmptyReply         = errors.New("reply must not be empty")
	ErrValidation         = errors.New("validation failed")
	ErrHistoryDisabled    = errors.New("revenue history is not configured")
)
