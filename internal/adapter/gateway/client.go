package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"print-wallet-ledger/internal/core/domain"
	"print-wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.PaymentGatewayClient against the gateway's REST
// orders API. Requests authenticate with the key pair via HTTP basic auth.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a new gateway orders client.
func NewClient(baseURL, keyID, keySecret string, httpClient HTTPClient, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: httpClient,
		log:        log,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type gatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers a payment order with the gateway and returns the
// gateway-assigned order ID.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receiptRef string) (*domain.PaymentOrder, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receiptRef,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.ErrGatewayUnavailable(fmt.Errorf("gateway request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperror.ErrGatewayUnavailable(fmt.Errorf("read gateway response: %w", err))
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, apperror.ErrGatewayUnavailable(fmt.Errorf("gateway returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		var gwErr gatewayErrorResponse
		if err := json.Unmarshal(respBody, &gwErr); err == nil && gwErr.Error.Description != "" {
			c.log.Warn().
				Int("status", resp.StatusCode).
				Str("code", gwErr.Error.Code).
				Str("description", gwErr.Error.Description).
				Msg("gateway rejected order")
			return nil, apperror.ErrGatewayRejected(fmt.Errorf("gateway: %s", gwErr.Error.Description))
		}
		return nil, apperror.ErrGatewayRejected(fmt.Errorf("gateway returned %d", resp.StatusCode))
	}

	var orderResp createOrderResponse
	if err := json.Unmarshal(respBody, &orderResp); err != nil {
		return nil, apperror.ErrGatewayRejected(fmt.Errorf("decode gateway response: %w", err))
	}
	if orderResp.ID == "" {
		return nil, apperror.ErrGatewayRejected(fmt.Errorf("gateway response missing order id"))
	}

	return &domain.PaymentOrder{
		OrderID:     orderResp.ID,
		AmountMinor: orderResp.Amount,
		Currency:    orderResp.Currency,
		ReceiptRef:  orderResp.Receipt,
	}, nil
}
