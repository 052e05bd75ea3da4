package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionCreditOrDebit AuditAction = "CREDIT_OR_DEBIT"
	AuditActionCreateOrder   AuditAction = "CREATE_ORDER"
	AuditActionConfirmOrder  AuditAction = "CONFIRM_ORDER"
)

// AuditLog records a single audited wallet or payment action.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       string      `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
