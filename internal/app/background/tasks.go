package background

import (
	"context"
	"log"
	"time"

	usecase "github.com/hanamura/ec-order-service/internal/usecase/order"
)

type BackgroundTasks struct {
	OrderUsecase    usecase.OrderUsecase
	PollInterval    time.Duration
	TimeoutInterval time.Duration
}

func NewBackgroundTasks(orderUC usecase.OrderUsecase, pollInterval, timeoutInterval time.Duration) *BackgroundTasks {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if timeoutInterval <= 0 {
		timeoutInterval = 60 * time.Second
	}
	return &BackgroundTasks{
		OrderUsecase:    orderUC,
		PollInterval:    pollInterval,
		TimeoutInterval: timeoutInterval,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startPaymentStatusPoll(ctx)
	go bt.startPaymentTimeoutSweep(ctx)
}

func (bt *BackgroundTasks) startPaymentStatusPoll(ctx context.Context) {
	ticker := time.NewTicker(bt.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			output, err := bt.OrderUsecase.CheckWaitingPayments(ctx)
			if err != nil {
				log.Printf("Payment status poll error: %v\n", err)
				continue
			}
			if output.Updated > 0 || output.Failed > 0 {
				log.Printf("Payment status poll: checked=%d updated=%d failed=%d\n", output.Checked, output.Updated, output.Failed)
			}
		}
	}
}

func (bt *BackgroundTasks) startPaymentTimeoutSweep(ctx context.Context) {
	ticker := time.NewTicker(bt.TimeoutInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			output, err := bt.OrderUsecase.EnforcePaymentTimeouts(ctx)
			if err != nil {
				log.Printf("Payment timeout sweep error: %v\n", err)
				continue
			}
			if output.Expired > 0 || output.Failed > 0 {
				log.Printf("Payment timeout sweep: expired=%d failed=%d\n", output.Expired, output.Failed)
			}
		}
	}
}
