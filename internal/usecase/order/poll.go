package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/hanamura/ec-order-service/internal/domain"
	orderdto "github.com/hanamura/ec-order-service/internal/usecase/dto/order"
)

// CheckWaitingPayments polls the gateway for a bounded batch of orders
// still waiting on payment. It is the fallback for webhooks that never
// arrived; each order is handled in isolation so one bad response
// cannot stall the rest of the batch.
func (uc *DefaultOrderUsecase) CheckWaitingPayments(ctx context.Context) (*orderdto.PollOutput, error) {
	orders, err := uc.OrderRepo.FindAwaitingPayment(time.Now(), uc.Timings.PollBatchSize)
	if err != nil {
		return nil, err
	}

	output := &orderdto.PollOutput{}
	for _, order := range orders {
		if ctx.Err() != nil {
			return output, ctx.Err()
		}
		output.Checked++

		updated, err := uc.checkOne(order)
		if err != nil {
			output.Failed++
			if uc.Metrics != nil {
				uc.Metrics.PollErrorsTotal.Inc()
			}
			slog.Error("payment status poll failed", "orderNo", order.OrderNo, "error", err.Error())
			continue
		}
		if updated {
			output.Updated++
			if uc.Metrics != nil {
				uc.Metrics.PollUpdatesTotal.Inc()
			}
		}
	}

	if uc.Metrics != nil {
		uc.Metrics.PollChecksTotal.Add(float64(output.Checked))
	}
	return output, nil
}

func (uc *DefaultOrderUsecase) checkOne(order *domain.Order) (bool, error) {
	result, err := uc.PaymentHandler.GetStatus(order.OrderNo)
	if err != nil {
		return false, err
	}
	if result == nil || result.Empty() {
		return false, nil
	}

	event, ok := pollEvent(result)
	if !ok {
		return false, nil
	}

	before := order.Status
	after, err := uc.HandlePaymentStatus(order.OrderNo, event)
	if err != nil {
		return false, err
	}
	return after.Status != before, nil
}

// pollEvent maps a poll response to an engine event. A blank raw status
// is always skipped. Beside the regular status buckets it honors the
// sandbox gateway's success-flag shape:
// success=true with code OK is a completed payment even when the raw
// status is not a recognized success status, and success=false with a
// non-pending code is a failure. The event deliberately carries no
// event id, so it never collides with webhook deduplication.
func pollEvent(result *domain.PaymentStatusResult) (domain.PaymentStatusEvent, bool) {
	normalized := domain.NormalizeStatus(result.Status)
	if normalized == "" {
		return domain.PaymentStatusEvent{}, false
	}
	code := domain.NormalizeStatus(result.Code)
	outcome := domain.ClassifyPaymentStatus(normalized)

	switch {
	case outcome == domain.OutcomeSuccess:
	case outcome == domain.OutcomeFailure:
	case result.Success && code == "OK":
		normalized = "COMPLETED"
	case !result.Success && code != "" && code != "PENDING" && code != "OK":
		normalized = "FAILED"
	default:
		return domain.PaymentStatusEvent{}, false
	}

	return domain.PaymentStatusEvent{
		Status:  normalized,
		Code:    result.Code,
		Message: result.Message,
	}, true
}
