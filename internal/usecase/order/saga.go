package usecase

import (
	"errors"
	"log/slog"
	"time"

	"github.com/hanamura/ec-order-service/internal/domain"
	orderdto "github.com/hanamura/ec-order-service/internal/usecase/dto/order"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	stepStorageDeduct     = "STORAGE_DEDUCT"
	stepStorageCompensate = "STORAGE_COMPENSATE"
	stepStorageConfirm    = "STORAGE_CONFIRM"
)

// InitOrderPending creates an order in PENDING, or returns the existing
// row when the orderNo has been seen before. Creation is the saga's
// idempotency anchor: replays of the same orderNo never insert twice.
func (uc *DefaultOrderUsecase) InitOrderPending(input *orderdto.CreateOrderInput) (*domain.Order, error) {
	if input.OrderNo == "" {
		return nil, domain.ErrBlankOrderNo
	}
	if input.UserID <= 0 || input.ProductID <= 0 || input.Count <= 0 || !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidOrderInput
	}

	order := &domain.Order{
		OrderNo:   input.OrderNo,
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Count:     input.Count,
		Amount:    input.Amount,
		Status:    domain.StatusPending,
	}

	created, err := uc.OrderRepo.CreateOrder(order)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to create order: %v", err)
	}
	if !created {
		return uc.OrderRepo.GetOrderByOrderNo(input.OrderNo)
	}

	uc.publishStatusChange(order, "", domain.StatusPending, "", "order created")
	return order, nil
}

// CreateOrderSaga runs the full forward path: create the PENDING order,
// deduct stock, then request a payment session. A stock shortage fails
// the order outright; a payment failure releases the reserved stock.
func (uc *DefaultOrderUsecase) CreateOrderSaga(input *orderdto.CreateOrderInput) (*orderdto.PaymentRequestOutput, error) {
	order, err := uc.InitOrderPending(input)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.StatusFailed {
		return nil, domain.ErrOrderAlreadyFailed
	}

	if err := uc.DeductStock(order.OrderNo, order.ProductID, order.Count); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			if _, failErr := uc.MarkFailed(order.OrderNo, "OUT_OF_STOCK", "insufficient stock", time.Now()); failErr != nil {
				slog.Error("failed to fail order after stock shortage", "orderNo", order.OrderNo, "error", failErr.Error())
			}
			return nil, err
		}
		return nil, status.Errorf(codes.Internal, "stock deduction failed: %v", err)
	}

	output, err := uc.RequestPayment(order.OrderNo)
	if err != nil {
		if compErr := uc.CompensateStock(order.OrderNo, order.ProductID, order.Count); compErr != nil {
			slog.Error("failed to release stock after payment rejection", "orderNo", order.OrderNo, "error", compErr.Error())
		}
		return nil, err
	}

	return output, nil
}

// DeductStock reserves stock for the order, at most once per order.
func (uc *DefaultOrderUsecase) DeductStock(orderNo string, productID int64, count int32) error {
	return uc.OrderRepo.WithinTransaction(func(repo domain.OrderRepository) error {
		return uc.runStorageStep(repo, stepStorageDeduct, orderNo, productID, count, uc.StorageHandler.Deduct)
	})
}

// CompensateStock releases a prior reservation, at most once per order.
func (uc *DefaultOrderUsecase) CompensateStock(orderNo string, productID int64, count int32) error {
	return uc.OrderRepo.WithinTransaction(func(repo domain.OrderRepository) error {
		return uc.compensateStockTx(repo, orderNo, productID, count)
	})
}

// ConfirmStock converts a reservation into a permanent deduction.
func (uc *DefaultOrderUsecase) ConfirmStock(orderNo string, productID int64, count int32) error {
	return uc.OrderRepo.WithinTransaction(func(repo domain.OrderRepository) error {
		return uc.confirmStockTx(repo, orderNo, productID, count)
	})
}

func (uc *DefaultOrderUsecase) compensateStockTx(repo domain.OrderRepository, orderNo string, productID int64, count int32) error {
	return uc.runStorageStep(repo, stepStorageCompensate, orderNo, productID, count, uc.StorageHandler.Compensate)
}

func (uc *DefaultOrderUsecase) confirmStockTx(repo domain.OrderRepository, orderNo string, productID int64, count int32) error {
	return uc.runStorageStep(repo, stepStorageConfirm, orderNo, productID, count, uc.StorageHandler.Confirm)
}

// runStorageStep guards a storage call with the step log so each
// (orderNo, step) pair reaches the storage service at most once. The
// step row is inserted in the surrounding transaction, so a failed call
// rolls the row back and the step stays retryable.
func (uc *DefaultOrderUsecase) runStorageStep(
	repo domain.OrderRepository,
	step, orderNo string,
	productID int64, count int32,
	call func(orderNo string, productID int64, count int32) error) error {

	inserted, err := repo.CreateStepIfAbsent(orderNo, step)
	if err != nil {
		return err
	}
	if !inserted {
		slog.Info("storage step already executed, skipping", "orderNo", orderNo, "step", step)
		return nil
	}

	if err := call(orderNo, productID, count); err != nil {
		return err
	}

	return repo.MarkStepDone(orderNo, step)
}
