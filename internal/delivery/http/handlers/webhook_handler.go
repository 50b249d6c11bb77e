package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hanamura/ec-order-service/internal/domain"
	usecase "github.com/hanamura/ec-order-service/internal/usecase/order"
	"github.com/spf13/cast"
)

// WebhookHandler receives PayPay push notifications and internal status
// updates and feeds them into the reconciliation engine.
type WebhookHandler struct {
	OrderUsecase usecase.OrderUsecase
	Publisher    domain.EventPublisher
}

func NewWebhookHandler(orderUsecase usecase.OrderUsecase, eventPublisher domain.EventPublisher) *WebhookHandler {
	return &WebhookHandler{
		OrderUsecase: orderUsecase,
		Publisher:    eventPublisher,
	}
}

func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /paypay/callback", h.HandlePayPayWebhook)
	mux.HandleFunc("POST /api/paypay/webhook", h.HandlePayPayWebhook)
	mux.HandleFunc("POST /api/orders/{orderNo}/payment/events", h.HandlePaymentEvent)
}

type paymentEventRequest struct {
	Status    string `json:"status"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	EventID   string `json:"eventId,omitempty"`
	EventTime string `json:"eventTime,omitempty"`
}

type webhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HandlePaymentEvent is the strict inbound surface for internal
// callers: validation and lookup failures map to real HTTP errors.
func (h *WebhookHandler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	orderNo := r.PathValue("orderNo")

	var request paymentEventRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, webhookAck{Success: false, Message: "invalid json body"})
		return
	}

	order, err := h.OrderUsecase.HandlePaymentStatus(orderNo, domain.PaymentStatusEvent{
		Status:    request.Status,
		Code:      request.Code,
		Message:   request.Message,
		EventID:   request.EventID,
		EventTime: request.EventTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBlankOrderNo), errors.Is(err, domain.ErrBlankStatus):
			writeJSON(w, http.StatusBadRequest, webhookAck{Success: false, Message: err.Error()})
		case errors.Is(err, domain.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, webhookAck{Success: false, Message: "order not found"})
		default:
			slog.Error("payment event processing failed", "orderNo", orderNo, "error", err.Error())
			writeJSON(w, http.StatusInternalServerError, webhookAck{Success: false, Message: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"orderNo":       order.OrderNo,
		"status":        order.Status,
		"paymentStatus": order.PaymentStatus,
	})
}

// HandlePayPayWebhook accepts whatever shape the gateway sends.
// Malformed payloads get a 400 since retrying them is pointless;
// lookup and internal failures are acked with 200 so the gateway does
// not retry-storm an endpoint that cannot make progress anyway.
func (h *WebhookHandler) HandlePayPayWebhook(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, webhookAck{Success: false, Message: "invalid json body"})
		return
	}

	orderNo, event := probeWebhookPayload(payload)
	if orderNo == "" || event.Status == "" {
		writeJSON(w, http.StatusBadRequest, webhookAck{Success: false, Message: "missing orderId or status"})
		return
	}

	if domain.ClassifyPaymentStatus(domain.NormalizeStatus(event.Status)) == domain.OutcomeSuccess {
		h.publishPaymentSucceeded(orderNo, payload)
	}

	if _, err := h.OrderUsecase.HandlePaymentStatus(orderNo, event); err != nil {
		slog.Error("webhook reconciliation failed", "orderNo", orderNo, "error", err.Error())
		writeJSON(w, http.StatusOK, webhookAck{Success: false, Message: "not processed"})
		return
	}

	writeJSON(w, http.StatusOK, webhookAck{Success: true})
}

func (h *WebhookHandler) publishPaymentSucceeded(orderNo string, payload map[string]any) {
	if h.Publisher == nil {
		return
	}
	err := h.Publisher.PublishPaymentSucceeded(
		orderNo,
		probeString(payload, "paymentId", "data.paymentId", "merchantPaymentId"),
		"paypay",
		cast.ToFloat64(probeAny(payload, "amount.amount", "data.amount.amount", "amount", "data.amount")),
		domain.FirstNonBlank(probeString(payload, "amount.currency", "data.amount.currency", "currency"), "JPY"),
	)
	if err != nil {
		slog.Error("failed to publish payment succeeded event", "orderNo", orderNo, "error", err.Error())
	}
}

// probeWebhookPayload extracts the engine event from the gateway's
// loosely structured payload, field by field, first non-blank wins:
//
//	orderId:   metadata.orderId, merchantPaymentId, data.merchantPaymentId, data.orderId
//	status:    status, data.status, data.paymentStatus
//	code:      code, data.code, resultInfo.code
//	message:   message, data.message, resultInfo.message
//	eventId:   eventId
//	eventTime: eventTime, data.eventTime, eventDate, timestamp (epoch millis)
func probeWebhookPayload(payload map[string]any) (string, domain.PaymentStatusEvent) {
	orderNo := probeString(payload, "metadata.orderId", "merchantPaymentId", "data.merchantPaymentId", "data.orderId")
	return orderNo, domain.PaymentStatusEvent{
		Status:    probeString(payload, "status", "data.status", "data.paymentStatus"),
		Code:      probeString(payload, "code", "data.code", "resultInfo.code"),
		Message:   probeString(payload, "message", "data.message", "resultInfo.message"),
		EventID:   probeString(payload, "eventId"),
		EventTime: probeString(payload, "eventTime", "data.eventTime", "eventDate", "timestamp"),
	}
}

func probeString(payload map[string]any, paths ...string) string {
	for _, path := range paths {
		if value := cast.ToString(lookupPath(payload, path)); value != "" {
			return value
		}
	}
	return ""
}

func probeAny(payload map[string]any, paths ...string) any {
	for _, path := range paths {
		if value := lookupPath(payload, path); value != nil {
			return value
		}
	}
	return nil
}

func lookupPath(payload map[string]any, path string) any {
	current := any(payload)
	for _, key := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = node[key]
	}
	return current
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err.Error())
	}
}
