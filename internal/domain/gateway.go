package domain

import "github.com/shopspring/decimal"

// StorageGateway is the external ledger contract. Every call is
// idempotent at the gateway per (orderNo, step), so callers may retry
// freely.
type StorageGateway interface {
	Deduct(orderNo string, productID int64, count int32) error
	Compensate(orderNo string, productID int64, count int32) error
	Confirm(orderNo string, productID int64, count int32) error
}

// PaymentSession is the result of creating a payment with the gateway.
type PaymentSession struct {
	Success   bool
	Status    string
	Code      string
	Message   string
	URL       string
	Deeplink  string
	ExpiresAt string
}

// PaymentStatusResult is the gateway's answer to a status poll. Empty
// reports that the gateway had nothing to say this cycle.
type PaymentStatusResult struct {
	Success bool
	Status  string
	Code    string
	Message string
}

func (r PaymentStatusResult) Empty() bool {
	return r.Status == "" && r.Code == "" && r.Message == ""
}

// PaymentGateway is the payment backend contract: untrusted, possibly
// slow, possibly duplicating.
type PaymentGateway interface {
	CreateSession(orderNo string, amount decimal.Decimal) (*PaymentSession, error)
	GetStatus(orderNo string) (*PaymentStatusResult, error)
}
