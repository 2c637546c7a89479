package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrTargetRequired  = errors.New("payment must reference exactly one course or lesson")
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrInvalidStatus   = errors.New("invalid payment status")
	ErrInvalidAmount   = errors.New("payment amount must not be negative")
	ErrUserRequired    = errors.New("payment user is required")
)
