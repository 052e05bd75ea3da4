package dto

// CreditOrDebitRequest is the request body for a manual ledger adjustment.
// Points is a pointer so a zero delta still passes required validation.
type CreditOrDebitRequest struct {
	UserID string `json:"userID" binding:"required,max=64,safe_id"`
	Points *int64 `json:"points" binding:"required"`
	Rupees int64  `json:"rupees"`
	Note   string `json:"note" binding:"max=255"`
}

// CreateOrderRequest is the request body for registering a payment order.
// Amount is in minor units (paise).
type CreateOrderRequest struct {
	AmountMinorUnits int64 `json:"amountMinorUnits" binding:"required,gt=0"`
}

// VerifyRequest is the request body for confirmation signature verification.
type VerifyRequest struct {
	OrderID   string `json:"orderID" binding:"required,max=64,safe_id"`
	PaymentID string `json:"paymentID" binding:"required,max=64,safe_id"`
	Signature string `json:"signature" binding:"required,max=128"`
}

// ConfirmRequest is the request body for crediting a wallet from a verified
// payment confirmation.
type ConfirmRequest struct {
	UserID    string `json:"userID" binding:"required,max=64,safe_id"`
	OrderID   string `json:"orderID" binding:"required,max=64,safe_id"`
	PaymentID string `json:"paymentID" binding:"required,max=64,safe_id"`
	Signature string `json:"signature" binding:"required,max=128"`
	Points    *int64 `json:"points" binding:"required"`
	Rupees    int64  `json:"rupees"`
	Note      string `json:"note" binding:"max=255"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	UserID      string `json:"userID"`
	TotalPoints int64  `json:"totalPoints"`
	TotalRupees int64  `json:"totalRupees"`
}

// AccountResponse is the response after a successful ledger mutation.
type AccountResponse struct {
	UserID      string `json:"userID"`
	TotalPoints int64  `json:"totalPoints"`
	TotalRupees int64  `json:"totalRupees"`
	UpdatedAt   string `json:"updatedAt"`
}

// OrderResponse is the response after order registration.
type OrderResponse struct {
	OrderID          string `json:"orderID"`
	AmountMinorUnits int64  `json:"amountMinorUnits"`
	Currency         string `json:"currency"`
	ReceiptRef       string `json:"receiptRef"`
}

// VerifyResponse reports whether a confirmation signature is authentic.
type VerifyResponse struct {
	Verified bool `json:"verified"`
}

// TransactionResponse is one ledger entry in a listing.
type TransactionResponse struct {
	ID        string  `json:"id"`
	Points    int64   `json:"points"`
	Rupees    int64   `json:"rupees"`
	Type      string  `json:"type"`
	Note      string  `json:"note,omitempty"`
	Source    string  `json:"source"`
	OrderID   *string `json:"orderID,omitempty"`
	PaymentID *string `json:"paymentID,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// TransactionListResponse wraps a paginated ledger listing.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// StatsResponse holds aggregated ledger statistics for one account.
type StatsResponse struct {
	TotalTransactions int64 `json:"totalTransactions"`
	Credits           int64 `json:"credits"`
	Debits            int64 `json:"debits"`
	PointsCredited    int64 `json:"pointsCredited"`
	PointsDebited     int64 `json:"pointsDebited"`
}
