package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	paymentRequest "github.com/hanamura/ec-order-service/internal/delivery/http/dto/payment/request"
	paymentResponse "github.com/hanamura/ec-order-service/internal/delivery/http/dto/payment/response"
	"github.com/hanamura/ec-order-service/internal/domain"
	"github.com/shopspring/decimal"
)

// HTTPPaymentHandler talks to the payment adapter fronting PayPay.
type HTTPPaymentHandler struct {
	Address string
	client  *http.Client
}

func NewHTTPPaymentHandler(address string) (*HTTPPaymentHandler, error) {
	return &HTTPPaymentHandler{
		Address: address,
		client:  &http.Client{Timeout: 3 * time.Second},
	}, nil
}

func (h *HTTPPaymentHandler) CreateSession(orderNo string, amount decimal.Decimal) (*domain.PaymentSession, error) {
	requestBodyBytes, err := json.Marshal(paymentRequest.CreateSessionRequest{
		OrderNo: orderNo,
		Amount:  amount,
	})
	if err != nil {
		return nil, err
	}

	response, err := h.client.Post(h.Address+"/internal/payment/paypay/pay", "application/json", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	var sessionResponse paymentResponse.SessionResponse
	if err := json.Unmarshal(responseBodyBytes, &sessionResponse); err != nil {
		return nil, fmt.Errorf("payment create session: unexpected response: %w", err)
	}

	return &domain.PaymentSession{
		Success:   sessionResponse.Success && response.StatusCode >= 200 && response.StatusCode < 300,
		Status:    sessionResponse.Status,
		Code:      sessionResponse.Code,
		Message:   sessionResponse.Message,
		URL:       sessionResponse.URL,
		Deeplink:  sessionResponse.Deeplink,
		ExpiresAt: sessionResponse.ExpiresAt,
	}, nil
}

func (h *HTTPPaymentHandler) GetStatus(orderNo string) (*domain.PaymentStatusResult, error) {
	response, err := h.client.Get(fmt.Sprintf("%s/internal/payment/paypay/status?orderNo=%s", h.Address, orderNo))
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	var statusResponse paymentResponse.StatusResponse
	if err := json.Unmarshal(responseBodyBytes, &statusResponse); err != nil {
		return nil, fmt.Errorf("payment status: unexpected response: %w", err)
	}

	return &domain.PaymentStatusResult{
		Success: statusResponse.Success,
		Status:  statusResponse.Status,
		Code:    statusResponse.Code,
		Message: statusResponse.Message,
	}, nil
}
