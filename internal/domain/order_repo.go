package domain

import "time"

// PaymentSessionUpdate carries the session fields written by RequestPayment.
type PaymentSessionUpdate struct {
	PaymentStatus    string
	PaymentURL       string
	RequestedAt      time.Time
	ExpiresAt        time.Time
	ChannelToken     string
	ChannelExpiresAt time.Time
}

// PaymentMetaUpdate mirrors the metadata-only write the reconciliation
// engine performs on every event, transition or not. Zero-value string
// fields are left untouched; Success controls whether fail fields are
// cleared or set.
type PaymentMetaUpdate struct {
	PaymentStatus string
	EventID       string
	EventTime     *time.Time
	Success       bool
	FailCode      string
	FailMessage   string
}

type OrderRepository interface {
	// CreateOrder inserts the order and reports false without error when a
	// row with the same orderNo already exists.
	CreateOrder(order *Order) (bool, error)
	GetOrderByOrderNo(orderNo string) (*Order, error)

	// Guarded conditional updates: each returns whether the transition
	// actually applied. A false result means another writer got there
	// first and the caller should re-read.
	AttachPaymentSession(orderNo string, session PaymentSessionUpdate) (bool, error)
	MarkPaid(orderNo string, at time.Time) (bool, error)
	MarkFailed(orderNo string, failCode, failMessage string, at time.Time) (bool, error)

	UpdatePaymentMeta(orderNo string, meta PaymentMetaUpdate) error

	FindAwaitingPayment(now time.Time, limit int) ([]*Order, error)
	FindPaymentExpired(now time.Time) ([]*Order, error)

	// Step log: generalized (aggregateId, step) -> outcome idempotency
	// store backed by a unique constraint. CreateStepIfAbsent reports
	// false when the step was already recorded.
	CreateStepIfAbsent(aggregateID, step string) (bool, error)
	MarkStepDone(aggregateID, step string) error

	// WithinTransaction runs fn against a repository bound to a single
	// database transaction. Returning an error rolls everything back,
	// including any step-log rows created inside.
	WithinTransaction(fn func(repo OrderRepository) error) error
}
