package orderdto

import "github.com/hanamura/ec-order-service/internal/domain"

type OrderOutput struct {
	Order domain.Order
}

type PaymentRequestOutput struct {
	Order      domain.Order
	PaymentURL string
	Applied    bool
}

type PollOutput struct {
	Checked int
	Updated int
	Failed  int
}

type TimeoutOutput struct {
	Expired int
	Failed  int
}
