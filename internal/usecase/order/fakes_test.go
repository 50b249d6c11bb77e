package usecase

import (
	"errors"
	"sync"
	"time"

	"github.com/hanamura/ec-order-service/internal/domain"
	"github.com/shopspring/decimal"
)

var errFakeGateway = errors.New("fake gateway error")

// fakeOrderRepo mirrors the Postgres repository's guarded-update
// semantics in memory so the usecase logic can be exercised without a
// database.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	steps  map[string]string
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*domain.Order),
		steps:  make(map[string]string),
	}
}

func (f *fakeOrderRepo) CreateOrder(order *domain.Order) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.orders[order.OrderNo]; exists {
		return false, nil
	}
	clone := *order
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	f.orders[order.OrderNo] = &clone
	return true, nil
}

func (f *fakeOrderRepo) GetOrderByOrderNo(orderNo string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderNo]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderRepo) AttachPaymentSession(orderNo string, session domain.PaymentSessionUpdate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderNo]
	if !ok || (order.Status != domain.StatusPending && order.Status != domain.StatusWaitingPayment) {
		return false, nil
	}
	order.Status = domain.StatusWaitingPayment
	order.PaymentStatus = session.PaymentStatus
	order.PaymentURL = session.PaymentURL
	requestedAt := session.RequestedAt
	expiresAt := session.ExpiresAt
	channelExpiresAt := session.ChannelExpiresAt
	order.PaymentRequestedAt = &requestedAt
	order.PaymentExpiresAt = &expiresAt
	order.PaymentChannelToken = session.ChannelToken
	order.PaymentChannelExpiresAt = &channelExpiresAt
	order.PaymentLastEventID = ""
	order.UpdatedAt = session.RequestedAt
	return true, nil
}

func (f *fakeOrderRepo) MarkPaid(orderNo string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderNo]
	if !ok || order.Status == domain.StatusFailed {
		return false, nil
	}
	order.Status = domain.StatusPaid
	order.PaymentStatus = "COMPLETED"
	paidAt := at
	order.PaymentCompletedAt = &paidAt
	order.PaidAt = &paidAt
	order.FailedAt = nil
	order.FailCode = ""
	order.FailMessage = ""
	order.PaymentChannelToken = ""
	order.PaymentChannelExpiresAt = nil
	order.UpdatedAt = at
	return true, nil
}

func (f *fakeOrderRepo) MarkFailed(orderNo string, failCode, failMessage string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderNo]
	if !ok || order.Status == domain.StatusPaid {
		return false, nil
	}
	if len(failMessage) > 255 {
		failMessage = failMessage[:255]
	}
	order.Status = domain.StatusFailed
	order.PaymentStatus = "FAILED"
	order.FailCode = failCode
	order.FailMessage = failMessage
	order.PaymentURL = ""
	order.PaidAt = nil
	failedAt := at
	order.FailedAt = &failedAt
	order.PaymentCompletedAt = nil
	order.PaymentChannelToken = ""
	order.PaymentChannelExpiresAt = nil
	order.UpdatedAt = at
	return true, nil
}

func (f *fakeOrderRepo) UpdatePaymentMeta(orderNo string, meta domain.PaymentMetaUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderNo]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.PaymentStatus = meta.PaymentStatus
	if meta.EventID != "" {
		order.PaymentLastEventID = meta.EventID
	}
	if meta.EventTime != nil {
		eventTime := *meta.EventTime
		order.PaymentCompletedAt = &eventTime
		if meta.Success {
			order.PaidAt = &eventTime
			order.FailedAt = nil
		} else {
			order.FailedAt = &eventTime
		}
	}
	if meta.Success {
		order.FailCode = ""
		order.FailMessage = ""
	} else {
		if meta.FailCode != "" {
			order.FailCode = meta.FailCode
		}
		if meta.FailMessage != "" {
			order.FailMessage = meta.FailMessage
		}
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (f *fakeOrderRepo) FindAwaitingPayment(now time.Time, limit int) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.Order
	for _, order := range f.orders {
		if order.Status == domain.StatusWaitingPayment && order.PaymentExpiresAt != nil && !order.PaymentExpiresAt.Before(now) {
			clone := *order
			result = append(result, &clone)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) FindPaymentExpired(now time.Time) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.Order
	for _, order := range f.orders {
		if order.Status == domain.StatusWaitingPayment && order.PaymentExpiresAt != nil && order.PaymentExpiresAt.Before(now) {
			clone := *order
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) CreateStepIfAbsent(aggregateID, step string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aggregateID + "/" + step
	if _, exists := f.steps[key]; exists {
		return false, nil
	}
	f.steps[key] = "PROCESSING"
	return true, nil
}

func (f *fakeOrderRepo) MarkStepDone(aggregateID, step string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps[aggregateID+"/"+step] = "DONE"
	return nil
}

func (f *fakeOrderRepo) WithinTransaction(fn func(repo domain.OrderRepository) error) error {
	return fn(f)
}

func (f *fakeOrderRepo) seed(order *domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *order
	f.orders[order.OrderNo] = &clone
}

type fakeStorageGateway struct {
	mu              sync.Mutex
	DeductCalls     int
	CompensateCalls int
	ConfirmCalls    int
	DeductErr       error
	CompensateErr   error
	ConfirmErr      error
}

func (s *fakeStorageGateway) Deduct(orderNo string, productID int64, count int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeductCalls++
	return s.DeductErr
}

func (s *fakeStorageGateway) Compensate(orderNo string, productID int64, count int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CompensateCalls++
	return s.CompensateErr
}

func (s *fakeStorageGateway) Confirm(orderNo string, productID int64, count int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ConfirmCalls++
	return s.ConfirmErr
}

type fakePaymentGateway struct {
	Session    *domain.PaymentSession
	SessionErr error
	Status     *domain.PaymentStatusResult
	StatusErr  error
	StatusFn   func(orderNo string) (*domain.PaymentStatusResult, error)
}

func (p *fakePaymentGateway) CreateSession(orderNo string, amount decimal.Decimal) (*domain.PaymentSession, error) {
	if p.SessionErr != nil {
		return nil, p.SessionErr
	}
	if p.Session != nil {
		return p.Session, nil
	}
	return &domain.PaymentSession{
		Success:   true,
		Status:    "CREATED",
		URL:       "https://pay.example/" + orderNo,
		ExpiresAt: "",
	}, nil
}

func (p *fakePaymentGateway) GetStatus(orderNo string) (*domain.PaymentStatusResult, error) {
	if p.StatusFn != nil {
		return p.StatusFn(orderNo)
	}
	if p.StatusErr != nil {
		return nil, p.StatusErr
	}
	return p.Status, nil
}

type fakePublisher struct {
	mu             sync.Mutex
	StatusChanges  []domain.StatusChange
	PaymentsEvents []string
	Err            error
}

func (p *fakePublisher) PublishStatusChanged(change domain.StatusChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.StatusChanges = append(p.StatusChanges, change)
	return nil
}

func (p *fakePublisher) PublishPaymentSucceeded(orderNo, paymentID, provider string, amount float64, currency string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.PaymentsEvents = append(p.PaymentsEvents, orderNo)
	return nil
}

func newTestUsecase() (*DefaultOrderUsecase, *fakeOrderRepo, *fakeStorageGateway, *fakePaymentGateway, *fakePublisher) {
	repo := newFakeOrderRepo()
	storage := &fakeStorageGateway{}
	payment := &fakePaymentGateway{}
	pub := &fakePublisher{}
	uc := NewDefaultOrderUsecase(repo, storage, payment, pub, nil, PaymentTimings{})
	return uc, repo, storage, payment, pub
}
