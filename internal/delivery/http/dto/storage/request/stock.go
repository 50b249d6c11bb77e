package request

type StockRequest struct {
	OrderNo   string `json:"orderNo"`
	ProductID int64  `json:"productId"`
	Count     int32  `json:"count"`
}
