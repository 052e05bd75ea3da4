package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConsumedConfirmation is the durable record of a payment confirmation that
// already credited a wallet. A second confirmation with the same
// (orderID, paymentID) pair is a replay and must not credit again.
type ConsumedConfirmation struct {
	Key           string    `json:"key"` // Format: "order_id:payment_id"
	UserID        string    `json:"user_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	ConsumedAt    time.Time `json:"consumed_at"`
}

// BuildConfirmationKey constructs the replay-protection key for a
// confirmation pair.
func BuildConfirmationKey(orderID, paymentID string) string {
	return orderID + ":" + paymentID
}
