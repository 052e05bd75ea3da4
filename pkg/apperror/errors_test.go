package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("WAL_001", "Insufficient wallet balance", http.StatusPaymentRequired),
			expected: "[WAL_001] Insufficient wallet balance",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("STO_001", "Ledger store unavailable", http.StatusServiceUnavailable, fmt.Errorf("connection refused")),
			expected: "[STO_001] Ledger store unavailable: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("VAL_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestVerificationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidSignature", ErrInvalidSignature(), "SEC_001", 400},
		{"ConfirmationReplayed", ErrConfirmationReplayed(), "SEC_002", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestGatewayErrors(t *testing.T) {
	cause := fmt.Errorf("dial timeout")

	rejected := ErrGatewayRejected(cause)
	assert.Equal(t, "GTW_001", rejected.Code)
	assert.Equal(t, http.StatusBadGateway, rejected.HTTPStatus)
	assert.True(t, errors.Is(rejected, cause))

	unavailable := ErrGatewayUnavailable(cause)
	assert.Equal(t, "GTW_002", unavailable.Code)
	assert.Equal(t, http.StatusServiceUnavailable, unavailable.HTTPStatus)

	amount := ErrInvalidOrderAmount()
	assert.Equal(t, "GTW_003", amount.Code)
	assert.Equal(t, http.StatusBadRequest, amount.HTTPStatus)
}

func TestLedgerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InsufficientBalance", ErrInsufficientBalance(), "WAL_001", 402},
		{"NotFound", ErrNotFound("wallet account"), "WAL_002", 404},
		{"MissingUserID", ErrMissingUserID(), "VAL_002", 400},
		{"PointsRequired", ErrPointsRequired(), "VAL_003", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestStorageUnavailable_IsRetryableStatus(t *testing.T) {
	err := ErrStorageUnavailable(fmt.Errorf("pool closed"))
	assert.Equal(t, "STO_001", err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus)
}
