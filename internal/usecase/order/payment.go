package usecase

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/hanamura/ec-order-service/internal/domain"
	orderdto "github.com/hanamura/ec-order-service/internal/usecase/dto/order"
	"github.com/jaevor/go-nanoid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// epoch values above this are treated as milliseconds
const epochMillisFloor = int64(10_000_000_000)

// RequestPayment opens a PayPay session for the order and moves it to
// WAITING_PAYMENT. Calling it again while a session is open is a no-op,
// so the payment link can be re-requested safely.
func (uc *DefaultOrderUsecase) RequestPayment(orderNo string) (*orderdto.PaymentRequestOutput, error) {
	order, err := uc.OrderRepo.GetOrderByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case domain.StatusPaid:
		return &orderdto.PaymentRequestOutput{Order: *order, PaymentURL: order.PaymentURL}, nil
	case domain.StatusFailed:
		return nil, domain.ErrOrderAlreadyFailed
	case domain.StatusWaitingPayment:
		return &orderdto.PaymentRequestOutput{Order: *order, PaymentURL: order.PaymentURL}, nil
	}

	channelToken, channelExpiresAt, err := uc.ensureChannelToken(order)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to prepare payment channel: %v", err)
	}

	session, err := uc.PaymentHandler.CreateSession(order.OrderNo, order.Amount)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "payment gateway unreachable: %v", err)
	}

	if !session.Success {
		failCode := domain.FirstNonBlank(session.Code, "NO_RESULT")
		failMessage := domain.FirstNonBlank(session.Message, "PAYPAY_ERROR")
		if _, failErr := uc.MarkFailed(order.OrderNo, failCode, failMessage, time.Now()); failErr != nil {
			slog.Error("failed to fail order after gateway rejection", "orderNo", order.OrderNo, "error", failErr.Error())
		}
		return nil, domain.ErrPaymentRejected
	}

	now := time.Now()
	expiresAt := resolveExpiry(session.ExpiresAt, now, uc.Timings.WaitTimeout)
	paymentURL := domain.FirstNonBlank(session.URL, session.Deeplink)

	applied, err := uc.OrderRepo.AttachPaymentSession(order.OrderNo, domain.PaymentSessionUpdate{
		PaymentStatus:    domain.NormalizeStatus(session.Status),
		PaymentURL:       paymentURL,
		RequestedAt:      now,
		ExpiresAt:        expiresAt,
		ChannelToken:     channelToken,
		ChannelExpiresAt: channelExpiresAt,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to record payment session: %v", err)
	}

	reloaded, err := uc.OrderRepo.GetOrderByOrderNo(order.OrderNo)
	if err != nil {
		return nil, err
	}

	if applied {
		uc.publishStatusChange(reloaded, order.Status, domain.StatusWaitingPayment, reloaded.PaymentStatus, "payment requested")
	}

	return &orderdto.PaymentRequestOutput{
		Order:      *reloaded,
		PaymentURL: reloaded.PaymentURL,
		Applied:    applied,
	}, nil
}

// ensureChannelToken reuses the order's channel token while it still has
// more than the refresh threshold of life left, minting a fresh one otherwise.
func (uc *DefaultOrderUsecase) ensureChannelToken(order *domain.Order) (string, time.Time, error) {
	now := time.Now()
	if order.PaymentChannelToken != "" && order.PaymentChannelExpiresAt != nil &&
		order.PaymentChannelExpiresAt.After(now.Add(uc.Timings.TokenRefreshThreshold)) {
		return order.PaymentChannelToken, *order.PaymentChannelExpiresAt, nil
	}

	tokenGenerator, err := nanoid.Standard(21)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenGenerator(), now.Add(uc.Timings.WaitTimeout), nil
}

// resolveExpiry interprets the gateway's expiry field, which arrives
// either as RFC 3339 or as epoch seconds or milliseconds depending on
// the provider's mood. Anything unparseable falls back to the wait timeout.
func resolveExpiry(raw string, now time.Time, waitTimeout time.Duration) time.Time {
	if raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed
		}
		if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil && epoch > 0 {
			if epoch > epochMillisFloor {
				return time.UnixMilli(epoch)
			}
			return time.Unix(epoch, 0)
		}
	}
	return now.Add(waitTimeout)
}
