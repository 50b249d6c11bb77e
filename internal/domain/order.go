package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusWaitingPayment OrderStatus = "WAITING_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusFailed         OrderStatus = "FAILED"
)

// Order is the aggregate mutated by the saga, the webhook path,
// the status poller and the timeout sweep. The row in Postgres is
// the single source of truth; business Status only moves through
// guarded conditional updates.
type Order struct {
	ID        string
	OrderNo   string
	UserID    int64
	ProductID int64
	Count     int32
	Amount    decimal.Decimal
	Status    OrderStatus

	// Payment session fields, attached by RequestPayment
	PaymentStatus           string
	PaymentURL              string
	PaymentRequestedAt      *time.Time
	PaymentExpiresAt        *time.Time
	PaymentCompletedAt      *time.Time
	PaymentChannelToken     string
	PaymentChannelExpiresAt *time.Time

	// Last applied external event id, used for duplicate suppression.
	// Poll-sourced events carry no id and never collide with webhooks.
	PaymentLastEventID string

	FailCode    string
	FailMessage string
	PaidAt      *time.Time
	FailedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusFailed
}
