package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageRequest "github.com/hanamura/ec-order-service/internal/delivery/http/dto/storage/request"
	storageResponse "github.com/hanamura/ec-order-service/internal/delivery/http/dto/storage/response"
	"github.com/hanamura/ec-order-service/internal/domain"
	"github.com/shopspring/decimal"
)

func TestHTTPStorageHandler_Deduct(t *testing.T) {
	var received storageRequest.StockRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/storage/deduct", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(storageResponse.StockResponse{Success: true})
	}))
	defer srv.Close()

	handler, err := NewHTTPStorageHandler(srv.URL)
	require.NoError(t, err)

	require.NoError(t, handler.Deduct("ORD-1", 42, 2))
	assert.Equal(t, "ORD-1", received.OrderNo)
	assert.Equal(t, int64(42), received.ProductID)
	assert.Equal(t, int32(2), received.Count)
}

func TestHTTPStorageHandler_InsufficientStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(storageResponse.StockResponse{Success: false, Code: "INSUFFICIENT_STOCK", Message: "not enough stock"})
	}))
	defer srv.Close()

	handler, err := NewHTTPStorageHandler(srv.URL)
	require.NoError(t, err)

	err = handler.Deduct("ORD-1", 42, 100)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestHTTPStorageHandler_GenericFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(storageResponse.StockResponse{Success: false, Code: "DB_DOWN"})
	}))
	defer srv.Close()

	handler, err := NewHTTPStorageHandler(srv.URL)
	require.NoError(t, err)

	err = handler.Compensate("ORD-1", 42, 2)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "DB_DOWN")
}

func TestHTTPPaymentHandler_CreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/payment/paypay/pay", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"status":    "CREATED",
			"url":       "https://pay.example/ORD-1",
			"expiresAt": "2026-08-01T12:15:00Z",
		})
	}))
	defer srv.Close()

	handler, err := NewHTTPPaymentHandler(srv.URL)
	require.NoError(t, err)

	session, err := handler.CreateSession("ORD-1", decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.True(t, session.Success)
	assert.Equal(t, "https://pay.example/ORD-1", session.URL)
	assert.Equal(t, "2026-08-01T12:15:00Z", session.ExpiresAt)
}

func TestHTTPPaymentHandler_GetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/payment/paypay/status", r.URL.Path)
		assert.Equal(t, "ORD-1", r.URL.Query().Get("orderNo"))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "status": "COMPLETED", "code": "OK"})
	}))
	defer srv.Close()

	handler, err := NewHTTPPaymentHandler(srv.URL)
	require.NoError(t, err)

	result, err := handler.GetStatus("ORD-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "COMPLETED", result.Status)
	assert.Equal(t, "OK", result.Code)
}
