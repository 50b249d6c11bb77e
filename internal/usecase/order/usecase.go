package usecase

import (
	"context"
	"time"

	"github.com/hanamura/ec-order-service/internal/domain"
	"github.com/hanamura/ec-order-service/internal/infrastructure/metrics"
	orderdto "github.com/hanamura/ec-order-service/internal/usecase/dto/order"
)

type OrderUsecase interface {
	CreateOrderSaga(input *orderdto.CreateOrderInput) (*orderdto.PaymentRequestOutput, error)
	InitOrderPending(input *orderdto.CreateOrderInput) (*domain.Order, error)
	RequestPayment(orderNo string) (*orderdto.PaymentRequestOutput, error)

	HandlePaymentStatus(orderNo string, event domain.PaymentStatusEvent) (*domain.Order, error)
	CheckWaitingPayments(ctx context.Context) (*orderdto.PollOutput, error)
	EnforcePaymentTimeouts(ctx context.Context) (*orderdto.TimeoutOutput, error)

	DeductStock(orderNo string, productID int64, count int32) error
	CompensateStock(orderNo string, productID int64, count int32) error
	ConfirmStock(orderNo string, productID int64, count int32) error

	GetOrderByOrderNo(orderNo string) (*domain.Order, error)
}

type PaymentTimings struct {
	WaitTimeout           time.Duration
	TokenRefreshThreshold time.Duration
	PollBatchSize         int
}

type DefaultOrderUsecase struct {
	OrderRepo      domain.OrderRepository
	StorageHandler domain.StorageGateway
	PaymentHandler domain.PaymentGateway
	Publisher      domain.EventPublisher
	Metrics        *metrics.PaymentMetrics
	Timings        PaymentTimings
}

func NewDefaultOrderUsecase(
	orderRepo domain.OrderRepository,
	storageHandler domain.StorageGateway,
	paymentHandler domain.PaymentGateway,
	eventPublisher domain.EventPublisher,
	paymentMetrics *metrics.PaymentMetrics,
	timings PaymentTimings) *DefaultOrderUsecase {

	if timings.WaitTimeout <= 0 {
		timings.WaitTimeout = 15 * time.Minute
	}
	if timings.TokenRefreshThreshold <= 0 {
		timings.TokenRefreshThreshold = time.Minute
	}
	if timings.PollBatchSize <= 0 {
		timings.PollBatchSize = 10
	}

	return &DefaultOrderUsecase{
		OrderRepo:      orderRepo,
		StorageHandler: storageHandler,
		PaymentHandler: paymentHandler,
		Publisher:      eventPublisher,
		Metrics:        paymentMetrics,
		Timings:        timings,
	}
}

func (uc *DefaultOrderUsecase) GetOrderByOrderNo(orderNo string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderByOrderNo(orderNo)
}
