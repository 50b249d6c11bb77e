package usecase

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/hanamura/ec-order-service/internal/domain"
)

// HandlePaymentStatus is the single entry point through which raw
// gateway statuses become business-state transitions. Both the webhook
// path and the poll path funnel through it. The whole call runs in one
// DB transaction so the event-id advance, the metadata write, the step
// log and the guarded transition commit or roll back together.
func (uc *DefaultOrderUsecase) HandlePaymentStatus(orderNo string, event domain.PaymentStatusEvent) (*domain.Order, error) {
	if orderNo == "" {
		return nil, domain.ErrBlankOrderNo
	}
	normalized := domain.NormalizeStatus(event.Status)
	if normalized == "" {
		return nil, domain.ErrBlankStatus
	}

	start := time.Now()
	source := "poll"
	if event.HasEventID() {
		source = "webhook"
	}

	var result *domain.Order
	err := uc.OrderRepo.WithinTransaction(func(repo domain.OrderRepository) error {
		order, err := repo.GetOrderByOrderNo(orderNo)
		if err != nil {
			return err
		}

		if event.HasEventID() && order.PaymentLastEventID == event.EventID {
			slog.Info("duplicate payment event suppressed", "orderNo", orderNo, "eventId", event.EventID)
			if uc.Metrics != nil {
				uc.Metrics.DuplicateEventsTotal.Inc()
			}
			result = order
			return nil
		}

		outcome := domain.ClassifyPaymentStatus(normalized)
		eventTime := resolveEventTime(event.EventTime)

		switch outcome {
		case domain.OutcomeSuccess:
			if err := uc.applySuccess(repo, order, eventTime); err != nil {
				return err
			}
		case domain.OutcomeFailure:
			if err := uc.applyFailure(repo, order, normalized, event, eventTime); err != nil {
				return err
			}
		default:
			slog.Warn("unrecognized payment status, metadata only",
				"orderNo", orderNo, "paymentStatus", normalized)
		}

		meta := domain.PaymentMetaUpdate{
			PaymentStatus: normalized,
			EventID:       event.EventID,
			EventTime:     eventTime,
			Success:       outcome == domain.OutcomeSuccess,
		}
		if outcome == domain.OutcomeFailure {
			if order.Status == domain.StatusPaid {
				// a captured payment keeps its paid metadata; the late
				// failure is visible in payment_status only
				meta.Success = true
			} else {
				meta.FailCode = failureCode(normalized, event)
				meta.FailMessage = failureMessage(normalized, event)
			}
		}
		if err := repo.UpdatePaymentMeta(orderNo, meta); err != nil {
			return err
		}

		result, err = repo.GetOrderByOrderNo(orderNo)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
		uc.Metrics.PaymentEventsTotal.WithLabelValues(domain.ClassifyPaymentStatus(normalized).String(), source).Inc()
	}
	return result, nil
}

func (uc *DefaultOrderUsecase) applySuccess(repo domain.OrderRepository, order *domain.Order, eventTime *time.Time) error {
	switch order.Status {
	case domain.StatusPaid:
		return nil
	case domain.StatusFailed:
		slog.Warn("success event for failed order, metadata only", "orderNo", order.OrderNo)
		return nil
	}

	if err := uc.confirmStockTx(repo, order.OrderNo, order.ProductID, order.Count); err != nil {
		return err
	}

	paidAt := time.Now()
	if eventTime != nil {
		paidAt = *eventTime
	}
	_, err := uc.markPaidTx(repo, order.OrderNo, paidAt)
	return err
}

func (uc *DefaultOrderUsecase) applyFailure(repo domain.OrderRepository, order *domain.Order, normalized string, event domain.PaymentStatusEvent, eventTime *time.Time) error {
	switch order.Status {
	case domain.StatusPaid:
		// a late failure notice for an already-captured payment must
		// never refund the stock or revert the order
		slog.Warn("failure event for paid order, metadata only",
			"orderNo", order.OrderNo, "paymentStatus", normalized)
		return nil
	case domain.StatusFailed:
		return nil
	}

	if err := uc.compensateStockTx(repo, order.OrderNo, order.ProductID, order.Count); err != nil {
		return err
	}

	failedAt := time.Now()
	if eventTime != nil {
		failedAt = *eventTime
	}
	_, err := uc.markFailedTx(repo, order.OrderNo, failureCode(normalized, event), failureMessage(normalized, event), failedAt)
	return err
}

func failureCode(normalized string, event domain.PaymentStatusEvent) string {
	return domain.FirstNonBlank(event.Code, normalized)
}

func failureMessage(normalized string, event domain.PaymentStatusEvent) string {
	return domain.FirstNonBlank(event.Message, "PayPay status "+normalized)
}

func resolveEventTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed
	}
	if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil && epoch > 0 {
		var parsed time.Time
		if epoch > epochMillisFloor {
			parsed = time.UnixMilli(epoch)
		} else {
			parsed = time.Unix(epoch, 0)
		}
		return &parsed
	}
	return nil
}
