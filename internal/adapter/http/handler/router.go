package handler

import (
	"print-wallet-ledger/internal/adapter/http/middleware"
	redisStore "print-wallet-ledger/internal/adapter/storage/redis"
	"print-wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	PaymentSvc     ports.PaymentService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService              // nil = identity auth disabled
	RateLimitStore *redisStore.RateLimitStore      // nil = rate limiting disabled
	AuditSvc       ports.AuditService              // nil = audit logging disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// Identity auth middleware, noop when no token service is wired.
	auth := func(c *gin.Context) { c.Next() }
	if deps.TokenSvc != nil {
		auth = middleware.IdentityAuth(deps.TokenSvc, deps.Logger)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.ReportingSvc)
	paymentHandler := NewPaymentHandler(deps.PaymentSvc, deps.WalletSvc)

	wallet := r.Group("/wallet", auth)
	{
		wallet.POST("/credit-or-debit", rl("wallet_mutations"), walletHandler.CreditOrDebit)
		wallet.GET("/balance/:userID", rl("wallet_reads"), walletHandler.GetBalance)
		wallet.GET("/transactions/:userID", rl("wallet_reads"), walletHandler.ListTransactions)
		wallet.GET("/stats/:userID", rl("wallet_reads"), walletHandler.GetStats)
	}

	payment := r.Group("/payment", auth)
	{
		payment.POST("/order", rl("payment_orders"), paymentHandler.CreateOrder)
		payment.POST("/verify", rl("payment_verify"), paymentHandler.Verify)
		payment.POST("/confirm", rl("payment_verify"), paymentHandler.Confirm)
	}

	return r
}
