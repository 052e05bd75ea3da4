package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"print-wallet-ledger/internal/core/domain"
	"print-wallet-ledger/internal/core/ports/mocks"
	"print-wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type paymentTestDeps struct {
	svc     *PaymentServiceImpl
	gateway *mocks.MockPaymentGatewayClient
	ctrl    *gomock.Controller
}

func setupPaymentService(t *testing.T) *paymentTestDeps {
	ctrl := gomock.NewController(t)
	d := &paymentTestDeps{
		gateway: mocks.NewMockPaymentGatewayClient(ctrl),
		ctrl:    ctrl,
	}
	d.svc = NewPaymentService(
		d.gateway, NewHMACSignatureVerifier(), testSecret, "INR", 2*time.Second, zerolog.Nop(),
	)
	return d
}

func TestPaymentService_CreateOrder_Success(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	d.gateway.EXPECT().
		CreateOrder(gomock.Any(), int64(9900), "INR", gomock.Any()).
		DoAndReturn(func(_ context.Context, amountMinor int64, currency, receiptRef string) (*domain.PaymentOrder, error) {
			assert.True(t, strings.HasPrefix(receiptRef, "RCPT-"))
			return &domain.PaymentOrder{
				OrderID:     "order_abc123",
				AmountMinor: amountMinor,
				Currency:    currency,
				ReceiptRef:  receiptRef,
			}, nil
		})

	order, err := d.svc.CreateOrder(context.Background(), 9900)
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", order.OrderID)
	assert.Equal(t, int64(9900), order.AmountMinor)
	assert.Equal(t, "INR", order.Currency)
}

func TestPaymentService_CreateOrder_NonPositiveAmount(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	for _, amount := range []int64{0, -1, -9900} {
		order, err := d.svc.CreateOrder(context.Background(), amount)
		assert.Nil(t, order)
		assertAppError(t, err, "GTW_003")
	}
}

func TestPaymentService_CreateOrder_GatewayRejected(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	d.gateway.EXPECT().
		CreateOrder(gomock.Any(), int64(100), "INR", gomock.Any()).
		Return(nil, errors.New("401 authentication failed"))

	order, err := d.svc.CreateOrder(context.Background(), 100)
	assert.Nil(t, order)
	assertAppError(t, err, "GTW_001")
}

func TestPaymentService_CreateOrder_GatewayTimeout(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	d.gateway.EXPECT().
		CreateOrder(gomock.Any(), int64(100), "INR", gomock.Any()).
		Return(nil, context.DeadlineExceeded)

	order, err := d.svc.CreateOrder(context.Background(), 100)
	assert.Nil(t, order)
	assertAppError(t, err, "GTW_002")
}

func TestPaymentService_CreateOrder_AppErrorPassesThrough(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	d.gateway.EXPECT().
		CreateOrder(gomock.Any(), int64(100), "INR", gomock.Any()).
		Return(nil, apperror.ErrGatewayUnavailable(errors.New("connection refused")))

	order, err := d.svc.CreateOrder(context.Background(), 100)
	assert.Nil(t, order)
	assertAppError(t, err, "GTW_002")
}

func TestPaymentService_VerifyConfirmation(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	verifier := NewHMACSignatureVerifier()
	valid := domain.PaymentConfirmation{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: verifier.Sign(testSecret, "order_1|pay_1"),
	}
	assert.True(t, d.svc.VerifyConfirmation(valid))

	tests := []struct {
		name string
		conf domain.PaymentConfirmation
	}{
		{"forged signature", domain.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_1", Signature: "deadbeef"}},
		{"swapped fields", domain.PaymentConfirmation{OrderID: "pay_1", PaymentID: "order_1", Signature: valid.Signature}},
		{"different order", domain.PaymentConfirmation{OrderID: "order_2", PaymentID: "pay_1", Signature: valid.Signature}},
		{"empty signature", domain.PaymentConfirmation{OrderID: "order_1", PaymentID: "pay_1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, d.svc.VerifyConfirmation(tt.conf))
		})
	}
}

func TestPaymentService_VerifyConfirmation_Repeatable(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	conf := domain.PaymentConfirmation{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Signature: NewHMACSignatureVerifier().Sign(testSecret, "order_1|pay_1"),
	}
	for i := 0; i < 5; i++ {
		assert.True(t, d.svc.VerifyConfirmation(conf))
	}
}
