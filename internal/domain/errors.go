package domain

import "errors"

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrAmountLimitExceeded = errors.New("amount exceeds transaction limit")
	ErrPayoutFailed        = errors.New("payout execution failed")
	ErrUserNotFound        = errors.New("user not found")
)
