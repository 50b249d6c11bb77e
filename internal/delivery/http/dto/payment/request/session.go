package request

import "github.com/shopspring/decimal"

type CreateSessionRequest struct {
	OrderNo string          `json:"orderNo"`
	Amount  decimal.Decimal `json:"amount"`
}
