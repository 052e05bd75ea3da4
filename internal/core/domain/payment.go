package domain

// PaymentOrder is a gateway-issued order awaiting payment. Orders are
// ephemeral: the ledger never persists them, only the credit that follows
// a verified confirmation.
type PaymentOrder struct {
	OrderID     string `json:"order_id"`
	AmountMinor int64  `json:"amount_minor_units"`
	Currency    string `json:"currency"`
	ReceiptRef  string `json:"receipt_ref"`
}

// PaymentConfirmation is the gateway's signed callback payload. It is used
// once for verification and never persisted as-is; only the consumed
// (orderID, paymentID) pair is recorded for replay protection.
type PaymentConfirmation struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// ConfirmationPayload builds the canonical string the gateway signs:
// orderID + "|" + paymentID.
func (c PaymentConfirmation) ConfirmationPayload() string {
	return c.OrderID + "|" + c.PaymentID
}
