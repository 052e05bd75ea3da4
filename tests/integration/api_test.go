package integration

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"print-wallet-ledger/internal/adapter/gateway"
	httpHandler "print-wallet-ledger/internal/adapter/http/handler"
	redisStorage "print-wallet-ledger/internal/adapter/storage/redis"
	"print-wallet-ledger/internal/core/domain"
	"print-wallet-ledger/internal/core/ports"
	"print-wallet-ledger/internal/service"
	"print-wallet-ledger/pkg/apperror"
	"print-wallet-ledger/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGatewaySecret = "test-gateway-secret"

// testApp builds a full application stack backed by in-memory repos, an
// in-memory Redis (miniredis), and a stub payment gateway served over
// httptest. The HTTP layer, middleware, handlers, services, Redis replay
// guard, and the gateway REST client are all real.

type testApp struct {
	server    *httptest.Server
	gatewaySv *httptest.Server
	redis     *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	// Stub gateway answering order creation like the real upstream API.
	orderSeq := 0
	gatewaySv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		orderSeq++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       fmt.Sprintf("order_test_%d", orderSeq),
			"amount":   body.Amount,
			"currency": body.Currency,
			"receipt":  body.Receipt,
			"status":   "created",
		})
	}))

	log := logger.New("debug", false)

	walletRepo := newInMemoryWalletRepo()
	txRepo := newInMemoryTransactionRepo()
	confRepo := newInMemoryConfirmationRepo()
	transactor := newInMemoryTransactor()
	replayGuard := redisStorage.NewReplayGuard(rdb)

	verifier := service.NewHMACSignatureVerifier()
	gatewayClient := gateway.NewClient(gatewaySv.URL, "test_key_id", testGatewaySecret, nil, log)

	walletSvc := service.NewWalletService(walletRepo, txRepo, confRepo, replayGuard, verifier, transactor, testGatewaySecret, log)
	paymentSvc := service.NewPaymentService(gatewayClient, verifier, testGatewaySecret, "INR", 5*time.Second, log)
	reportingSvc := service.NewReportingService(txRepo)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:    walletSvc,
		PaymentSvc:   paymentSvc,
		ReportingSvc: reportingSvc,
		HealthCheckers: []ports.HealthChecker{
			redisStorage.NewHealthCheck(rdb),
		},
		Logger: log,
	})

	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		gatewaySv.Close()
		mr.Close()
	})

	return &testApp{
		server:    server,
		gatewaySv: gatewaySv,
		redis:     mr,
	}
}

func (a *testApp) postJSON(t *testing.T, path string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(a.server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func signConfirmation(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testGatewaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_CreditAndBalance(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.postJSON(t, "/wallet/credit-or-debit", map[string]interface{}{
		"userID": "u_100",
		"points": int64(50),
		"rupees": int64(500),
		"note":   "signup bonus",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["totalPoints"])
	assert.Equal(t, float64(500), data["totalRupees"])

	respBal, bodyBal := app.get(t, "/wallet/balance/u_100")
	assert.Equal(t, http.StatusOK, respBal.StatusCode)
	balData := bodyBal["data"].(map[string]interface{})
	assert.Equal(t, float64(50), balData["totalPoints"])
	assert.Equal(t, float64(500), balData["totalRupees"])
}

func TestIntegration_UnknownUserBalanceIsZero(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/wallet/balance/nobody")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["totalPoints"])
	assert.Equal(t, float64(0), data["totalRupees"])
}

func TestIntegration_DebitBelowZeroRejected(t *testing.T) {
	app := newTestApp(t)

	_, _ = app.postJSON(t, "/wallet/credit-or-debit", map[string]interface{}{
		"userID": "u_200",
		"points": int64(10),
	})

	resp, body := app.postJSON(t, "/wallet/credit-or-debit", map[string]interface{}{
		"userID": "u_200",
		"points": int64(-25),
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "WAL_001", body["error_code"])

	// Balance is untouched after the rejection.
	_, bodyBal := app.get(t, "/wallet/balance/u_200")
	data := bodyBal["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["totalPoints"])
}

func TestIntegration_DebitWithinBalance(t *testing.T) {
	app := newTestApp(t)

	_, _ = app.postJSON(t, "/wallet/credit-or-debit", map[string]interface{}{
		"userID": "u_201",
		"points": int64(30),
		"rupees": int64(300),
	})
	resp, body := app.postJSON(t, "/wallet/credit-or-debit", map[string]interface{}{
		"userID": "u_201",
		"points": int64(-12),
		"rupees": int64(-120),
		"note":   "print job",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(18), data["totalPoints"])
	assert.Equal(t, float64(180), data["totalRupees"])
}

func TestIntegration_CreditMissingUserID(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.postJSON(t, "/wallet/credit-or-debit", map[string]interface{}{
		"points": int64(5),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error_code"], "VAL")
}

func TestIntegration_CreateOrder(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.postJSON(t, "/payment/order", map[string]interface{}{
		"amountMinorUnits": int64(49900),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "order_test_1", data["orderID"])
	assert.Equal(t, float64(49900), data["amountMinorUnits"])
	assert.Equal(t, "INR", data["currency"])
	assert.NotEmpty(t, data["receiptRef"])
}

func TestIntegration_VerifySignature(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.postJSON(t, "/payment/verify", map[string]interface{}{
		"orderID":   "order_v1",
		"paymentID": "pay_v1",
		"signature": signConfirmation("order_v1", "pay_v1"),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["verified"])

	respBad, bodyBad := app.postJSON(t, "/payment/verify", map[string]interface{}{
		"orderID":   "order_v1",
		"paymentID": "pay_v1",
		"signature": "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, respBad.StatusCode)
	assert.Equal(t, "SEC_001", bodyBad["error_code"])
}

func TestIntegration_ConfirmCreditsWalletOnce(t *testing.T) {
	app := newTestApp(t)

	confirm := map[string]interface{}{
		"userID":    "u_300",
		"orderID":   "order_c1",
		"paymentID": "pay_c1",
		"signature": signConfirmation("order_c1", "pay_c1"),
		"points":    int64(100),
		"rupees":    int64(1000),
		"note":      "wallet topup",
	}

	resp, body := app.postJSON(t, "/payment/confirm", confirm)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["totalPoints"])
	assert.Equal(t, float64(1000), data["totalRupees"])

	// Replaying the same confirmation is rejected and the balance holds.
	respReplay, bodyReplay := app.postJSON(t, "/payment/confirm", confirm)
	assert.Equal(t, http.StatusConflict, respReplay.StatusCode)
	assert.Equal(t, "SEC_002", bodyReplay["error_code"])

	_, bodyBal := app.get(t, "/wallet/balance/u_300")
	balData := bodyBal["data"].(map[string]interface{})
	assert.Equal(t, float64(100), balData["totalPoints"])
}

func TestIntegration_ConfirmTamperedSignature(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.postJSON(t, "/payment/confirm", map[string]interface{}{
		"userID":    "u_301",
		"orderID":   "order_c2",
		"paymentID": "pay_c2",
		"signature": signConfirmation("order_c2", "pay_other"),
		"points":    int64(100),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SEC_001", body["error_code"])

	// No account is created for a rejected confirmation.
	_, bodyBal := app.get(t, "/wallet/balance/u_301")
	balData := bodyBal["data"].(map[string]interface{})
	assert.Equal(t, float64(0), balData["totalPoints"])
}

func TestIntegration_ReplaySurvivesRedisFlush(t *testing.T) {
	app := newTestApp(t)

	confirm := map[string]interface{}{
		"userID":    "u_302",
		"orderID":   "order_c3",
		"paymentID": "pay_c3",
		"signature": signConfirmation("order_c3", "pay_c3"),
		"points":    int64(40),
	}
	resp, _ := app.postJSON(t, "/payment/confirm", confirm)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Losing the Redis fast path must not reopen the confirmation.
	app.redis.FlushAll()

	respReplay, bodyReplay := app.postJSON(t, "/payment/confirm", confirm)
	assert.Equal(t, http.StatusConflict, respReplay.StatusCode)
	assert.Equal(t, "SEC_002", bodyReplay["error_code"])
}

func TestIntegration_TransactionHistoryAndStats(t *testing.T) {
	app := newTestApp(t)

	_, _ = app.postJSON(t, "/wallet/credit-or-debit", map[string]interface{}{
		"userID": "u_400", "points": int64(60), "rupees": int64(600),
	})
	_, _ = app.postJSON(t, "/wallet/credit-or-debit", map[string]interface{}{
		"userID": "u_400", "points": int64(-15), "rupees": int64(-150), "note": "A4 color print",
	})

	respList, bodyList := app.get(t, "/wallet/transactions/u_400?page=1&page_size=10")
	require.Equal(t, http.StatusOK, respList.StatusCode)
	listData := bodyList["data"].(map[string]interface{})
	assert.Equal(t, float64(2), listData["total"])
	items := listData["items"].([]interface{})
	require.Len(t, items, 2)

	respDebits, bodyDebits := app.get(t, "/wallet/transactions/u_400?type=DEBIT")
	require.Equal(t, http.StatusOK, respDebits.StatusCode)
	debitData := bodyDebits["data"].(map[string]interface{})
	assert.Equal(t, float64(1), debitData["total"])

	respStats, bodyStats := app.get(t, "/wallet/stats/u_400")
	require.Equal(t, http.StatusOK, respStats.StatusCode)
	stats := bodyStats["data"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["totalTransactions"])
	assert.Equal(t, float64(1), stats["credits"])
	assert.Equal(t, float64(1), stats["debits"])
	assert.Equal(t, float64(60), stats["pointsCredited"])
	assert.Equal(t, float64(15), stats["pointsDebited"])
}

// failingOnceTransactor rejects the first Begin to simulate a transient
// storage outage, then delegates to the serializing in-memory transactor.
type failingOnceTransactor struct {
	inner  *inMemoryTransactor
	failed bool
}

func (t *failingOnceTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if !t.failed {
		t.failed = true
		return nil, errors.New("connection refused")
	}
	return t.inner.Begin(ctx)
}

func TestIntegration_ConfirmRetryAfterStorageFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	walletRepo := newInMemoryWalletRepo()
	txRepo := newInMemoryTransactionRepo()
	confRepo := newInMemoryConfirmationRepo()
	transactor := &failingOnceTransactor{inner: newInMemoryTransactor()}
	guard := redisStorage.NewReplayGuard(rdb)
	log := logger.New("debug", false)

	svc := service.NewWalletService(walletRepo, txRepo, confRepo, guard,
		service.NewHMACSignatureVerifier(), transactor, testGatewaySecret, log)

	req := ports.PaymentCreditRequest{
		UserID: "u_retry",
		Confirmation: domain.PaymentConfirmation{
			OrderID:   "order_r1",
			PaymentID: "pay_r1",
			Signature: signConfirmation("order_r1", "pay_r1"),
		},
		Points: 80,
		Rupees: 800,
	}

	ctx := context.Background()
	_, err := svc.CreditFromVerifiedPayment(ctx, req)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "STO_001", appErr.Code)

	// The confirmation was never credited; the retry must go through.
	account, err := svc.CreditFromVerifiedPayment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(80), account.TotalPoints)
	assert.Equal(t, int64(800), account.TotalRupees)

	// And only the retry: a third submission is a real replay.
	_, err = svc.CreditFromVerifiedPayment(ctx, req)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SEC_002", appErr.Code)
}
