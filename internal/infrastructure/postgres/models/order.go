package models

import (
	"time"

	"github.com/hanamura/ec-order-service/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderModel struct {
	ID        string             `gorm:"primaryKey;type:uuid"`
	OrderNo   string             `gorm:"uniqueIndex;not null"`
	UserID    int64              `gorm:"not null"`
	ProductID int64              `gorm:"not null"`
	Count     int32              `gorm:"not null"`
	Amount    decimal.Decimal    `gorm:"type:numeric(18,2);not null"`
	Status    domain.OrderStatus `gorm:"index:idx_status_payment_expires"`

	PaymentStatus           string
	PaymentURL              string
	PaymentRequestedAt      *time.Time
	PaymentExpiresAt        *time.Time `gorm:"index:idx_status_payment_expires"`
	PaymentCompletedAt      *time.Time
	PaymentChannelToken     string
	PaymentChannelExpiresAt *time.Time
	PaymentLastEventID      string

	FailCode    string
	FailMessage string `gorm:"size:255"`
	PaidAt      *time.Time
	FailedAt    *time.Time
	CreatedAt   time.Time `gorm:"index:idx_created_at"`
	UpdatedAt   time.Time
}

// TxStepLogModel is the generalized (aggregateId, step) idempotency
// store. The unique index makes the first writer win; later writers see
// a duplicate key and skip the side effect.
type TxStepLogModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	AggregateID string `gorm:"uniqueIndex:idx_aggregate_step;not null"`
	Step        string `gorm:"uniqueIndex:idx_aggregate_step;not null"`
	Status      string `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TxStepLogModel) TableName() string {
	return "tx_step_logs"
}
