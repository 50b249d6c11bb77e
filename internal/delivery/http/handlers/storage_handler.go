package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	storageRequest "github.com/hanamura/ec-order-service/internal/delivery/http/dto/storage/request"
	storageResponse "github.com/hanamura/ec-order-service/internal/delivery/http/dto/storage/response"
	"github.com/hanamura/ec-order-service/internal/domain"
)

// HTTPStorageHandler talks to the storage service's saga endpoints.
// Every endpoint is idempotent per (orderNo, step) on the storage side,
// so retries are always safe.
type HTTPStorageHandler struct {
	Address string
	client  *http.Client
}

func NewHTTPStorageHandler(address string) (*HTTPStorageHandler, error) {
	return &HTTPStorageHandler{
		Address: address,
		client:  &http.Client{Timeout: 3 * time.Second},
	}, nil
}

func (h *HTTPStorageHandler) Deduct(orderNo string, productID int64, count int32) error {
	return h.post("deduct", orderNo, productID, count)
}

func (h *HTTPStorageHandler) Compensate(orderNo string, productID int64, count int32) error {
	return h.post("compensate", orderNo, productID, count)
}

func (h *HTTPStorageHandler) Confirm(orderNo string, productID int64, count int32) error {
	return h.post("confirm", orderNo, productID, count)
}

func (h *HTTPStorageHandler) post(step, orderNo string, productID int64, count int32) error {
	requestBodyBytes, err := json.Marshal(storageRequest.StockRequest{
		OrderNo:   orderNo,
		ProductID: productID,
		Count:     count,
	})
	if err != nil {
		return err
	}

	response, err := h.client.Post(fmt.Sprintf("%s/internal/storage/%s", h.Address, step), "application/json", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	var stockResponse storageResponse.StockResponse
	if err := json.Unmarshal(responseBodyBytes, &stockResponse); err != nil {
		return fmt.Errorf("storage %s: unexpected response: %w", step, err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 && stockResponse.Success {
		return nil
	}
	if stockResponse.Code == "INSUFFICIENT_STOCK" {
		return domain.ErrInsufficientStock
	}
	return fmt.Errorf("storage %s failed: code=%s message=%s", step, stockResponse.Code, stockResponse.Message)
}
