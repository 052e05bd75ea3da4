package handler

import (
	"print-wallet-ledger/internal/adapter/http/dto"
	"print-wallet-ledger/internal/core/domain"
	"print-wallet-ledger/internal/core/ports"
	"print-wallet-ledger/pkg/apperror"
	"print-wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment order and confirmation endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
	walletSvc  ports.WalletService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService, walletSvc ports.WalletService) *PaymentHandler {
	return &PaymentHandler{
		paymentSvc: paymentSvc,
		walletSvc:  walletSvc,
	}
}

// CreateOrder handles POST /payment/order. Order creation holds no ledger
// state; an abandoned order is simply never confirmed.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := h.paymentSvc.CreateOrder(c.Request.Context(), req.AmountMinorUnits)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.OrderResponse{
		OrderID:          order.OrderID,
		AmountMinorUnits: order.AmountMinor,
		Currency:         order.Currency,
		ReceiptRef:       order.ReceiptRef,
	})
}

// Verify handles POST /payment/verify. Verification is pure: it never
// mutates the ledger, so the same confirmation can be verified repeatedly.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	valid := h.paymentSvc.VerifyConfirmation(domain.PaymentConfirmation{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if !valid {
		response.Error(c, apperror.ErrInvalidSignature())
		return
	}

	response.OK(c, dto.VerifyResponse{Verified: true})
}

// Confirm handles POST /payment/confirm. A verified confirmation credits
// the wallet exactly once; replays are rejected without mutation.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if !requireOwner(c, req.UserID) {
		return
	}

	account, err := h.walletSvc.CreditFromVerifiedPayment(c.Request.Context(), ports.PaymentCreditRequest{
		UserID: req.UserID,
		Confirmation: domain.PaymentConfirmation{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
		},
		Points: *req.Points,
		Rupees: req.Rupees,
		Note:   req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}
