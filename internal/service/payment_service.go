package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"print-wallet-ledger/internal/core/domain"
	"print-wallet-ledger/internal/core/ports"
	"print-wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService. Order creation is the
// only blocking external call in the payment flow; it is bounded by a
// timeout and safely retryable since it creates no ledger-side state.
type PaymentServiceImpl struct {
	gateway  ports.PaymentGatewayClient
	verifier ports.SignatureVerifier
	secret   string
	currency string
	timeout  time.Duration
	log      zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	gateway ports.PaymentGatewayClient,
	verifier ports.SignatureVerifier,
	secret string,
	currency string,
	timeout time.Duration,
	log zerolog.Logger,
) *PaymentServiceImpl {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaymentServiceImpl{
		gateway:  gateway,
		verifier: verifier,
		secret:   secret,
		currency: currency,
		timeout:  timeout,
		log:      log,
	}
}

// CreateOrder asks the gateway for a new payment order. The receipt
// reference is unique per call so a retried request cannot collide
// gateway-side.
func (s *PaymentServiceImpl) CreateOrder(ctx context.Context, amountMinor int64) (*domain.PaymentOrder, error) {
	if amountMinor <= 0 {
		return nil, apperror.ErrInvalidOrderAmount()
	}

	receiptRef := fmt.Sprintf("RCPT-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.gateway.CreateOrder(callCtx, amountMinor, s.currency, receiptRef)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, apperror.ErrGatewayUnavailable(err)
		}
		return nil, apperror.ErrGatewayRejected(err)
	}

	s.log.Info().
		Str("order_id", order.OrderID).
		Str("receipt_ref", order.ReceiptRef).
		Int64("amount_minor", order.AmountMinor).
		Str("currency", order.Currency).
		Msg("payment order created")

	return order, nil
}

// VerifyConfirmation recomputes the HMAC over orderID|paymentID and compares
// it to the supplied signature in constant time. Pure: no side effects, no
// network calls, safe to call repeatedly with identical results.
func (s *PaymentServiceImpl) VerifyConfirmation(confirmation domain.PaymentConfirmation) bool {
	return s.verifier.Verify(s.secret, confirmation.ConfirmationPayload(), confirmation.Signature)
}
