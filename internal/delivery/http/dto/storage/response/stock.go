package response

type StockResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
