package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanamura/ec-order-service/internal/domain"
	orderdto "github.com/hanamura/ec-order-service/internal/usecase/dto/order"
	"github.com/shopspring/decimal"
)

func createInput(orderNo string) *orderdto.CreateOrderInput {
	return &orderdto.CreateOrderInput{
		OrderNo: orderNo, UserID: 7, ProductID: 42, Count: 2, Amount: decimal.NewFromInt(5000),
	}
}

func TestInitOrderPending_Idempotent(t *testing.T) {
	uc, _, _, _, pub := newTestUsecase()

	first, err := uc.InitOrderPending(createInput("ORD-1"))
	require.NoError(t, err)
	second, err := uc.InitOrderPending(createInput("ORD-1"))
	require.NoError(t, err)

	assert.Equal(t, first.OrderNo, second.OrderNo)
	assert.Equal(t, domain.StatusPending, second.Status)
	assert.Len(t, pub.StatusChanges, 1, "replayed creation must not re-publish")
}

func TestInitOrderPending_BlankOrderNo(t *testing.T) {
	uc, _, _, _, _ := newTestUsecase()
	_, err := uc.InitOrderPending(createInput(""))
	assert.ErrorIs(t, err, domain.ErrBlankOrderNo)
}

func TestInitOrderPending_RequiresAllFields(t *testing.T) {
	uc, repo, _, _, _ := newTestUsecase()

	for name, mutate := range map[string]func(*orderdto.CreateOrderInput){
		"zero user":       func(in *orderdto.CreateOrderInput) { in.UserID = 0 },
		"zero product":    func(in *orderdto.CreateOrderInput) { in.ProductID = 0 },
		"zero count":      func(in *orderdto.CreateOrderInput) { in.Count = 0 },
		"negative count":  func(in *orderdto.CreateOrderInput) { in.Count = -1 },
		"zero amount":     func(in *orderdto.CreateOrderInput) { in.Amount = decimal.Zero },
		"negative amount": func(in *orderdto.CreateOrderInput) { in.Amount = decimal.NewFromInt(-1) },
	} {
		t.Run(name, func(t *testing.T) {
			input := createInput("ORD-1")
			mutate(input)
			_, err := uc.InitOrderPending(input)
			assert.ErrorIs(t, err, domain.ErrInvalidOrderInput)
		})
	}

	_, err := repo.GetOrderByOrderNo("ORD-1")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound, "rejected input must not insert a row")
}

func TestStorageSteps_RunAtMostOnce(t *testing.T) {
	uc, _, storage, _, _ := newTestUsecase()

	require.NoError(t, uc.DeductStock("ORD-1", 42, 2))
	require.NoError(t, uc.DeductStock("ORD-1", 42, 2))
	require.NoError(t, uc.CompensateStock("ORD-1", 42, 2))
	require.NoError(t, uc.CompensateStock("ORD-1", 42, 2))

	assert.Equal(t, 1, storage.DeductCalls)
	assert.Equal(t, 1, storage.CompensateCalls)
}

func TestStorageStep_RetryableAfterGatewayError(t *testing.T) {
	uc, repo, storage, _, _ := newTestUsecase()

	storage.DeductErr = errFakeGateway
	require.Error(t, uc.DeductStock("ORD-1", 42, 2))

	// the real repo rolls the step row back with the transaction;
	// the fake has no rollback, so emulate it
	delete(repo.steps, "ORD-1/"+stepStorageDeduct)

	storage.DeductErr = nil
	require.NoError(t, uc.DeductStock("ORD-1", 42, 2))
	assert.Equal(t, 2, storage.DeductCalls)
}

func TestCreateOrderSaga_HappyPath(t *testing.T) {
	uc, _, storage, _, _ := newTestUsecase()

	output, err := uc.CreateOrderSaga(createInput("ORD-1"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusWaitingPayment, output.Order.Status)
	assert.NotEmpty(t, output.PaymentURL)
	assert.Equal(t, 1, storage.DeductCalls)
	assert.Equal(t, 0, storage.CompensateCalls)
}

func TestCreateOrderSaga_InsufficientStockFailsOrder(t *testing.T) {
	uc, repo, storage, _, _ := newTestUsecase()
	storage.DeductErr = domain.ErrInsufficientStock

	_, err := uc.CreateOrderSaga(createInput("ORD-1"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	order, err := repo.GetOrderByOrderNo("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, order.Status)
	assert.Equal(t, "OUT_OF_STOCK", order.FailCode)
	assert.Equal(t, 0, storage.CompensateCalls, "nothing was reserved, nothing to release")
}

func TestCreateOrderSaga_PaymentRejectionReleasesStock(t *testing.T) {
	uc, repo, storage, payment, _ := newTestUsecase()
	payment.Session = &domain.PaymentSession{Success: false, Code: "INVALID_AMOUNT", Message: "amount out of range"}

	_, err := uc.CreateOrderSaga(createInput("ORD-1"))
	assert.ErrorIs(t, err, domain.ErrPaymentRejected)

	order, err := repo.GetOrderByOrderNo("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, order.Status)
	assert.Equal(t, "INVALID_AMOUNT", order.FailCode)
	assert.Equal(t, 1, storage.DeductCalls)
	assert.Equal(t, 1, storage.CompensateCalls)
}

func TestConcurrentSuccessAndFailure_OneTerminalTransition(t *testing.T) {
	uc, repo, storage, _, pub := newTestUsecase()
	repo.seed(waitingOrder("ORD-1", 10*time.Minute))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = uc.HandlePaymentStatus("ORD-1", domain.PaymentStatusEvent{Status: "COMPLETED", EventID: "E3"})
	}()
	go func() {
		defer wg.Done()
		_, _ = uc.HandlePaymentStatus("ORD-1", domain.PaymentStatusEvent{Status: "EXPIRED"})
	}()
	wg.Wait()

	order, err := repo.GetOrderByOrderNo("ORD-1")
	require.NoError(t, err)
	assert.True(t, order.Status.Terminal(), "one of the two writers must finalize the order")
	assert.LessOrEqual(t, storage.ConfirmCalls, 1)
	assert.LessOrEqual(t, storage.CompensateCalls, 1)
	assert.Len(t, pub.StatusChanges, 1, "only the winning transition publishes")
	if order.Status == domain.StatusPaid {
		assert.NotNil(t, order.PaidAt)
	} else {
		assert.NotNil(t, order.FailedAt)
	}
}

func TestConcurrentFinalization_OnlyOneWinner(t *testing.T) {
	uc, repo, storage, _, _ := newTestUsecase()
	repo.seed(waitingOrder("ORD-1", 10*time.Minute))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = uc.HandlePaymentStatus("ORD-1", domain.PaymentStatusEvent{Status: "COMPLETED", EventID: "E1"})
	}()
	go func() {
		defer wg.Done()
		_, _ = uc.HandlePaymentStatus("ORD-1", domain.PaymentStatusEvent{Status: "COMPLETED", EventID: "E1"})
	}()
	wg.Wait()

	order, err := repo.GetOrderByOrderNo("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, order.Status)
	assert.Equal(t, 1, storage.ConfirmCalls, "step log must keep the confirm call single")
}
