package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hanamura/ec-order-service/internal/domain"
	orderdto "github.com/hanamura/ec-order-service/internal/usecase/dto/order"
	usecase "github.com/hanamura/ec-order-service/internal/usecase/order"
	"github.com/shopspring/decimal"
)

// OrderHandler exposes order intake and lookup for internal callers.
type OrderHandler struct {
	OrderUsecase usecase.OrderUsecase
}

func NewOrderHandler(orderUsecase usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{OrderUsecase: orderUsecase}
}

func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders/{orderNo}", h.GetOrder)
}

type createOrderRequest struct {
	OrderNo   string          `json:"orderNo"`
	UserID    int64           `json:"userId"`
	ProductID int64           `json:"productId"`
	Count     int32           `json:"count"`
	Amount    decimal.Decimal `json:"amount"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var request createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, webhookAck{Success: false, Message: "invalid json body"})
		return
	}

	output, err := h.OrderUsecase.CreateOrderSaga(&orderdto.CreateOrderInput{
		OrderNo:   request.OrderNo,
		UserID:    request.UserID,
		ProductID: request.ProductID,
		Count:     request.Count,
		Amount:    request.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBlankOrderNo), errors.Is(err, domain.ErrInvalidOrderInput):
			writeJSON(w, http.StatusBadRequest, webhookAck{Success: false, Message: err.Error()})
		case errors.Is(err, domain.ErrInsufficientStock):
			writeJSON(w, http.StatusConflict, webhookAck{Success: false, Message: "insufficient stock"})
		case errors.Is(err, domain.ErrOrderAlreadyFailed), errors.Is(err, domain.ErrPaymentRejected):
			writeJSON(w, http.StatusConflict, webhookAck{Success: false, Message: err.Error()})
		default:
			slog.Error("order creation failed", "orderNo", request.OrderNo, "error", err.Error())
			writeJSON(w, http.StatusInternalServerError, webhookAck{Success: false, Message: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":          true,
		"orderNo":          output.Order.OrderNo,
		"status":           output.Order.Status,
		"paymentUrl":       output.PaymentURL,
		"paymentExpiresAt": output.Order.PaymentExpiresAt,
	})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.OrderUsecase.GetOrderByOrderNo(r.PathValue("orderNo"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, webhookAck{Success: false, Message: "order not found"})
			return
		}
		slog.Error("order lookup failed", "orderNo", r.PathValue("orderNo"), "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, webhookAck{Success: false, Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, order)
}
