package ports

import (
	"context"
	"time"

	"print-wallet-ledger/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// SignatureVerifier handles HMAC-SHA256 signing and verification of payment
// confirmations. Pure computation, no side effects.
type SignatureVerifier interface {
	Sign(secret string, payload string) string
	Verify(secret string, payload string, signature string) bool
}

// PaymentGatewayClient creates orders on the external payment gateway.
// Injected at construction so tests can substitute a double.
type PaymentGatewayClient interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receiptRef string) (*domain.PaymentOrder, error)
}

// ReplayGuard is the Redis-layer replay check for payment confirmations
// (fast path; the durable layer is ConfirmationRepository).
type ReplayGuard interface {
	// CheckAndSet atomically checks if the confirmation key exists, sets it
	// if not. Returns true if the key is new (confirmation not yet seen).
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release removes a reserved key so a confirmation whose credit never
	// committed can be retried before the TTL expires.
	Release(ctx context.Context, key string) error
}

// TokenService validates bearer tokens issued by the external identity
// service.
type TokenService interface {
	Validate(tokenString string) (*IdentityClaims, error)
}

// IdentityClaims holds the parsed identity token claims.
type IdentityClaims struct {
	UserID string
}

// --- Service Ports (Business Logic) ---

// WalletService is the public balance/credit/debit contract of the ledger.
type WalletService interface {
	Credit(ctx context.Context, req AdjustmentRequest) (*domain.WalletAccount, error)
	Debit(ctx context.Context, req AdjustmentRequest) (*domain.WalletAccount, error)
	CreditFromVerifiedPayment(ctx context.Context, req PaymentCreditRequest) (*domain.WalletAccount, error)
	GetBalance(ctx context.Context, userID string) (domain.Balance, error)
}

// AdjustmentRequest holds validated input for a manual wallet mutation.
// Debit amounts already carry a negative sign; the service never negates.
type AdjustmentRequest struct {
	UserID string
	Points int64
	Rupees int64
	Note   string
}

// PaymentCreditRequest holds input for crediting a wallet from a verified
// gateway confirmation.
type PaymentCreditRequest struct {
	UserID       string
	Confirmation domain.PaymentConfirmation
	Points       int64
	Rupees       int64
	Note         string
}

// PaymentService wraps the gateway order flow and confirmation verification.
type PaymentService interface {
	CreateOrder(ctx context.Context, amountMinor int64) (*domain.PaymentOrder, error)
	VerifyConfirmation(confirmation domain.PaymentConfirmation) bool
}

// ReportingService exposes transaction history and per-account statistics.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, userID string) (*TransactionStats, error)
}

// AuditService defines async audit logging.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
