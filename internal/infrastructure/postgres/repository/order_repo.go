package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hanamura/ec-order-service/internal/domain"
	"github.com/hanamura/ec-order-service/internal/infrastructure/postgres/mappers"
	"github.com/hanamura/ec-order-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

const maxFailMessageLen = 255

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(order *domain.Order) (bool, error) {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	orderModel := mappers.ToGORMOrder(order)
	if err := r.DB.Create(orderModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *DefaultOrderRepository) GetOrderByOrderNo(orderNo string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.First(&order, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return mappers.ToDomainOrder(&order), nil
}

// AttachPaymentSession writes the payment session fields guarded so only
// PENDING and WAITING_PAYMENT rows can enter WAITING_PAYMENT. A stale
// writer updates zero rows.
func (r *DefaultOrderRepository) AttachPaymentSession(orderNo string, session domain.PaymentSessionUpdate) (bool, error) {
	res := r.DB.Model(&models.OrderModel{}).
		Where("order_no = ? AND status IN ?", orderNo, []domain.OrderStatus{domain.StatusPending, domain.StatusWaitingPayment}).
		Updates(map[string]interface{}{
			"status":                     domain.StatusWaitingPayment,
			"payment_status":             session.PaymentStatus,
			"payment_url":                session.PaymentURL,
			"payment_requested_at":       session.RequestedAt,
			"payment_expires_at":         session.ExpiresAt,
			"payment_channel_token":      session.ChannelToken,
			"payment_channel_expires_at": session.ChannelExpiresAt,
			"payment_last_event_id":      "",
			"updated_at":                 session.RequestedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DefaultOrderRepository) MarkPaid(orderNo string, at time.Time) (bool, error) {
	res := r.DB.Model(&models.OrderModel{}).
		Where("order_no = ? AND status IN ?", orderNo, []domain.OrderStatus{domain.StatusPending, domain.StatusWaitingPayment, domain.StatusPaid}).
		Updates(map[string]interface{}{
			"status":                     domain.StatusPaid,
			"payment_status":             "COMPLETED",
			"payment_completed_at":       at,
			"paid_at":                    at,
			"failed_at":                  nil,
			"fail_code":                  "",
			"fail_message":               "",
			"payment_channel_token":      "",
			"payment_channel_expires_at": nil,
			"updated_at":                 at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DefaultOrderRepository) MarkFailed(orderNo string, failCode, failMessage string, at time.Time) (bool, error) {
	if len(failMessage) > maxFailMessageLen {
		failMessage = failMessage[:maxFailMessageLen]
	}
	res := r.DB.Model(&models.OrderModel{}).
		Where("order_no = ? AND status IN ?", orderNo, []domain.OrderStatus{domain.StatusPending, domain.StatusWaitingPayment, domain.StatusFailed}).
		Updates(map[string]interface{}{
			"status":                     domain.StatusFailed,
			"payment_status":             "FAILED",
			"fail_code":                  failCode,
			"fail_message":               failMessage,
			"payment_url":                "",
			"paid_at":                    nil,
			"failed_at":                  at,
			"payment_completed_at":       nil,
			"payment_channel_token":      "",
			"payment_channel_expires_at": nil,
			"updated_at":                 at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdatePaymentMeta records what the gateway said without touching the
// business status. It runs on every event, including duplicates of
// terminal outcomes, so payment_status may diverge from status.
func (r *DefaultOrderRepository) UpdatePaymentMeta(orderNo string, meta domain.PaymentMetaUpdate) error {
	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": meta.PaymentStatus,
		"updated_at":     now,
	}
	if meta.EventID != "" {
		updates["payment_last_event_id"] = meta.EventID
	}
	if meta.EventTime != nil {
		updates["payment_completed_at"] = *meta.EventTime
		if meta.Success {
			updates["paid_at"] = *meta.EventTime
			updates["failed_at"] = nil
		} else {
			updates["failed_at"] = *meta.EventTime
		}
	}
	if meta.Success {
		updates["fail_code"] = ""
		updates["fail_message"] = ""
	} else {
		if meta.FailCode != "" {
			updates["fail_code"] = meta.FailCode
		}
		if meta.FailMessage != "" {
			msg := meta.FailMessage
			if len(msg) > maxFailMessageLen {
				msg = msg[:maxFailMessageLen]
			}
			updates["fail_message"] = msg
		}
	}

	return r.DB.Model(&models.OrderModel{}).
		Where("order_no = ?", orderNo).
		Updates(updates).Error
}

func (r *DefaultOrderRepository) FindAwaitingPayment(now time.Time, limit int) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.DB.
		Where("status = ?", domain.StatusWaitingPayment).
		Where("payment_expires_at >= ?", now).
		Limit(limit).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, mappers.ToDomainOrder(&orderModels[i]))
	}
	return orders, nil
}

func (r *DefaultOrderRepository) FindPaymentExpired(now time.Time) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.DB.
		Where("status = ?", domain.StatusWaitingPayment).
		Where("payment_expires_at < ?", now).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, mappers.ToDomainOrder(&orderModels[i]))
	}
	return orders, nil
}

func (r *DefaultOrderRepository) CreateStepIfAbsent(aggregateID, step string) (bool, error) {
	entry := models.TxStepLogModel{
		AggregateID: aggregateID,
		Step:        step,
		Status:      "PROCESSING",
	}
	if err := r.DB.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *DefaultOrderRepository) MarkStepDone(aggregateID, step string) error {
	return r.DB.Model(&models.TxStepLogModel{}).
		Where("aggregate_id = ? AND step = ?", aggregateID, step).
		Update("status", "DONE").Error
}

func (r *DefaultOrderRepository) WithinTransaction(fn func(repo domain.OrderRepository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&DefaultOrderRepository{DB: tx})
	})
}
