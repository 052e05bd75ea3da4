package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a 400 error for missing or malformed input.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrMissingUserID() *AppError {
	return New("VAL_002", "userID is required", http.StatusBadRequest)
}

func ErrPointsRequired() *AppError {
	return New("VAL_003", "points is required and must be numeric", http.StatusBadRequest)
}

// ---- Payment Verification (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_001", "Payment confirmation signature is invalid", http.StatusBadRequest)
}

func ErrConfirmationReplayed() *AppError {
	return New("SEC_002", "Payment confirmation has already been consumed", http.StatusConflict)
}

// ---- Payment Gateway (GTW) ----

func ErrGatewayRejected(err error) *AppError {
	return Wrap("GTW_001", "Payment gateway rejected the request", http.StatusBadGateway, err)
}

func ErrGatewayUnavailable(err error) *AppError {
	return Wrap("GTW_002", "Payment gateway unreachable", http.StatusServiceUnavailable, err)
}

func ErrInvalidOrderAmount() *AppError {
	return New("GTW_003", "Order amount must be positive", http.StatusBadRequest)
}

// ---- Wallet Ledger (WAL) ----

func ErrInsufficientBalance() *AppError {
	return New("WAL_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrNotFound(entity string) *AppError {
	return New("WAL_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Identity (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired identity token", http.StatusUnauthorized)
}

func ErrUserMismatch() *AppError {
	return New("AUTH_002", "Token subject does not match target user", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Storage & Infrastructure (STO / SYS) ----

// ErrStorageUnavailable marks a ledger store failure as retryable (503).
func ErrStorageUnavailable(err error) *AppError {
	return Wrap("STO_001", "Ledger store unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
