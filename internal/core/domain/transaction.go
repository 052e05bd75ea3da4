package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a ledger entry as credit or debit.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// TransactionSource records what produced a ledger entry.
type TransactionSource string

const (
	TransactionSourceManual  TransactionSource = "MANUAL"
	TransactionSourcePayment TransactionSource = "PAYMENT"
)

// Transaction is one immutable credit/debit event in a wallet's ledger.
// Points and rupees are signed deltas: positive credits, negative debits.
// Owned exclusively by its WalletAccount.
type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	UserID    string            `json:"user_id"`
	Points    int64             `json:"points"`
	Rupees    int64             `json:"rupees"`
	Type      TransactionType   `json:"type"`
	Note      string            `json:"note,omitempty"`
	Source    TransactionSource `json:"source"`
	OrderID   *string           `json:"order_id,omitempty"`
	PaymentID *string           `json:"payment_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// ClassifyTransaction derives the credit/debit tag from the points delta
// alone. Zero points counts as a credit even when rupees is negative; the
// rupee sign never participates in classification.
func ClassifyTransaction(points int64) TransactionType {
	if points >= 0 {
		return TransactionTypeCredit
	}
	return TransactionTypeDebit
}

// IsCredit reports whether the entry is classified as a credit.
func (t *Transaction) IsCredit() bool {
	return t.Type == TransactionTypeCredit
}
