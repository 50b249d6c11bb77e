package usecase

import (
	"context"
	"log/slog"
	"time"

	orderdto "github.com/hanamura/ec-order-service/internal/usecase/dto/order"
)

const (
	timeoutFailCode    = "PAYPAY_TIMEOUT"
	timeoutFailMessage = "PayPay payment timed out"
)

// EnforcePaymentTimeouts fails every order whose payment window has
// closed without a terminal event. Stock is released only when the
// FAILED transition actually applied, so an order finalized by a racing
// webhook between selection and update is never compensated twice.
func (uc *DefaultOrderUsecase) EnforcePaymentTimeouts(ctx context.Context) (*orderdto.TimeoutOutput, error) {
	orders, err := uc.OrderRepo.FindPaymentExpired(time.Now())
	if err != nil {
		return nil, err
	}

	output := &orderdto.TimeoutOutput{}
	for _, order := range orders {
		if ctx.Err() != nil {
			return output, ctx.Err()
		}

		applied, err := uc.MarkFailed(order.OrderNo, timeoutFailCode, timeoutFailMessage, time.Now())
		if err != nil {
			output.Failed++
			if uc.Metrics != nil {
				uc.Metrics.TimeoutErrorsTotal.Inc()
			}
			slog.Error("failed to time out order", "orderNo", order.OrderNo, "error", err.Error())
			continue
		}
		if !applied {
			continue
		}

		if err := uc.CompensateStock(order.OrderNo, order.ProductID, order.Count); err != nil {
			output.Failed++
			if uc.Metrics != nil {
				uc.Metrics.TimeoutErrorsTotal.Inc()
			}
			slog.Error("failed to release stock for timed out order", "orderNo", order.OrderNo, "error", err.Error())
			continue
		}

		output.Expired++
		if uc.Metrics != nil {
			uc.Metrics.TimeoutsEnforcedTotal.Inc()
		}
		slog.Info("order timed out waiting for payment", "orderNo", order.OrderNo)
	}

	return output, nil
}
