package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"print-wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateOrder_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(9900), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "RCPT-1", req.Receipt)

		json.NewEncoder(w).Encode(createOrderResponse{
			ID:       "order_abc123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_id", "key_secret", srv.Client(), zerolog.Nop())

	order, err := client.CreateOrder(context.Background(), 9900, "INR", "RCPT-1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", order.OrderID)
	assert.Equal(t, int64(9900), order.AmountMinor)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "RCPT-1", order.ReceiptRef)
}

func TestClient_CreateOrder_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"code":        "BAD_REQUEST_ERROR",
				"description": "amount exceeds maximum allowed",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_id", "key_secret", srv.Client(), zerolog.Nop())

	order, err := client.CreateOrder(context.Background(), 1<<40, "INR", "RCPT-1")
	assert.Nil(t, order)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GTW_001", appErr.Code)
	assert.Contains(t, appErr.Err.Error(), "amount exceeds maximum allowed")
}

func TestClient_CreateOrder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_id", "key_secret", srv.Client(), zerolog.Nop())

	order, err := client.CreateOrder(context.Background(), 100, "INR", "RCPT-1")
	assert.Nil(t, order)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GTW_002", appErr.Code)
}

type failingHTTPClient struct{}

func (failingHTTPClient) Do(_ *http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestClient_CreateOrder_NetworkError(t *testing.T) {
	client := NewClient("http://gateway.invalid", "key_id", "key_secret", failingHTTPClient{}, zerolog.Nop())

	order, err := client.CreateOrder(context.Background(), 100, "INR", "RCPT-1")
	assert.Nil(t, order)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GTW_002", appErr.Code)
}

func TestClient_CreateOrder_MissingOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "created"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_id", "key_secret", srv.Client(), zerolog.Nop())

	order, err := client.CreateOrder(context.Background(), 100, "INR", "RCPT-1")
	assert.Nil(t, order)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GTW_001", appErr.Code)
}
