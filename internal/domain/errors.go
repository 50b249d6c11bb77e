package domain

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrBlankOrderNo       = errors.New("orderNo must not be blank")
	ErrInvalidOrderInput  = errors.New("userId, productId, count and amount must be set")
	ErrBlankStatus        = errors.New("status must not be blank")
	ErrOrderAlreadyFailed = errors.New("order already failed")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrPaymentRejected    = errors.New("payment request rejected")
)
