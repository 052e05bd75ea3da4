package handler

import (
	"math"
	"strconv"
	"time"

	"print-wallet-ledger/internal/adapter/http/dto"
	"print-wallet-ledger/internal/adapter/http/middleware"
	"print-wallet-ledger/internal/core/domain"
	"print-wallet-ledger/internal/core/ports"
	"print-wallet-ledger/pkg/apperror"
	"print-wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet ledger endpoints.
type WalletHandler struct {
	walletSvc    ports.WalletService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{
		walletSvc:    walletSvc,
		reportingSvc: reportingSvc,
	}
}

// requireOwner rejects requests where an authenticated user targets another
// user's wallet. Routes running without authentication pass through.
func requireOwner(c *gin.Context, userID string) bool {
	if auth := middleware.AuthenticatedUserID(c); auth != "" && auth != userID {
		response.Error(c, apperror.ErrUserMismatch())
		return false
	}
	return true
}

// CreditOrDebit handles POST /wallet/credit-or-debit. The points sign picks
// the operation: non-negative credits, negative debits.
func (h *WalletHandler) CreditOrDebit(c *gin.Context) {
	var req dto.CreditOrDebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if !requireOwner(c, req.UserID) {
		return
	}

	adj := ports.AdjustmentRequest{
		UserID: req.UserID,
		Points: *req.Points,
		Rupees: req.Rupees,
		Note:   req.Note,
	}

	var (
		account *domain.WalletAccount
		err     error
	)
	if *req.Points >= 0 {
		account, err = h.walletSvc.Credit(c.Request.Context(), adj)
	} else {
		account, err = h.walletSvc.Debit(c.Request.Context(), adj)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// GetBalance handles GET /wallet/balance/:userID. Unknown users report zero
// balances.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := c.Param("userID")
	if !requireOwner(c, userID) {
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		UserID:      userID,
		TotalPoints: balance.TotalPoints,
		TotalRupees: balance.TotalRupees,
	})
}

// ListTransactions handles GET /wallet/transactions/:userID.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID := c.Param("userID")
	if !requireOwner(c, userID) {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	params := ports.TransactionListParams{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	}
	if t := c.Query("type"); t != "" {
		txType := domain.TransactionType(t)
		params.Type = &txType
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	if params.PageSize < 1 {
		params.PageSize = 20
	}
	totalPages := int(math.Ceil(float64(total) / float64(params.PageSize)))

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

// GetStats handles GET /wallet/stats/:userID.
func (h *WalletHandler) GetStats(c *gin.Context) {
	userID := c.Param("userID")
	if !requireOwner(c, userID) {
		return
	}

	stats, err := h.reportingSvc.GetStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalTransactions: stats.TotalTransactions,
		Credits:           stats.Credits,
		Debits:            stats.Debits,
		PointsCredited:    stats.PointsCredited,
		PointsDebited:     stats.PointsDebited,
	})
}

func toAccountResponse(a *domain.WalletAccount) dto.AccountResponse {
	return dto.AccountResponse{
		UserID:      a.UserID,
		TotalPoints: a.TotalPoints,
		TotalRupees: a.TotalRupees,
		UpdatedAt:   a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        t.ID.String(),
		Points:    t.Points,
		Rupees:    t.Rupees,
		Type:      string(t.Type),
		Note:      t.Note,
		Source:    string(t.Source),
		OrderID:   t.OrderID,
		PaymentID: t.PaymentID,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
