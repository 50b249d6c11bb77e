package usecase

import (
	"log/slog"
	"time"

	"github.com/hanamura/ec-order-service/internal/domain"
)

// MarkPaid moves the order into PAID through the guarded repository
// update. Returns whether the write applied; PAID is absorbing, so a
// replay reports applied=false without touching the row.
func (uc *DefaultOrderUsecase) MarkPaid(orderNo string, at time.Time) (bool, error) {
	return uc.markPaidTx(uc.OrderRepo, orderNo, at)
}

// MarkFailed moves the order into FAILED with the given reason.
func (uc *DefaultOrderUsecase) MarkFailed(orderNo, failCode, failMessage string, at time.Time) (bool, error) {
	return uc.markFailedTx(uc.OrderRepo, orderNo, failCode, failMessage, at)
}

func (uc *DefaultOrderUsecase) markPaidTx(repo domain.OrderRepository, orderNo string, at time.Time) (bool, error) {
	before, err := repo.GetOrderByOrderNo(orderNo)
	if err != nil {
		return false, err
	}

	applied, err := repo.MarkPaid(orderNo, at)
	if err != nil {
		return false, err
	}
	if !applied || before.Status == domain.StatusPaid {
		return false, nil
	}

	after, err := repo.GetOrderByOrderNo(orderNo)
	if err != nil {
		return true, err
	}
	uc.publishStatusChange(after, before.Status, domain.StatusPaid, after.PaymentStatus, "payment completed")
	return true, nil
}

func (uc *DefaultOrderUsecase) markFailedTx(repo domain.OrderRepository, orderNo, failCode, failMessage string, at time.Time) (bool, error) {
	before, err := repo.GetOrderByOrderNo(orderNo)
	if err != nil {
		return false, err
	}

	applied, err := repo.MarkFailed(orderNo, failCode, failMessage, at)
	if err != nil {
		return false, err
	}
	if !applied || before.Status == domain.StatusFailed {
		return false, nil
	}

	after, err := repo.GetOrderByOrderNo(orderNo)
	if err != nil {
		return true, err
	}
	uc.publishStatusChange(after, before.Status, domain.StatusFailed, after.PaymentStatus, failCode)
	return true, nil
}

// publishStatusChange sends the change to Kafka without blocking or
// failing the caller. Publishing is best effort: the DB row is the
// source of truth and a lost event is only an observability gap.
func (uc *DefaultOrderUsecase) publishStatusChange(order *domain.Order, oldStatus, newStatus domain.OrderStatus, paymentStatus, reason string) {
	if uc.Publisher == nil {
		return
	}
	err := uc.Publisher.PublishStatusChanged(domain.StatusChange{
		Order:         order,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		PaymentStatus: paymentStatus,
		Reason:        reason,
	})
	if err != nil {
		slog.Error("failed to publish kafka order event", "orderNo", order.OrderNo, "newStatus", newStatus, "error", err.Error())
		if uc.Metrics != nil {
			uc.Metrics.PublishFailuresTotal.Inc()
		}
	}
}
