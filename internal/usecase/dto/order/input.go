package orderdto

import "github.com/shopspring/decimal"

type CreateOrderInput struct {
	OrderNo   string
	UserID    int64
	ProductID int64
	Count     int32
	Amount    decimal.Decimal
}
