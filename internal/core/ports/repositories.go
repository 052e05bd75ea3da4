package ports

import (
	"context"

	"print-wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// WalletRepository defines persistence operations for wallet accounts.
// Methods accepting pgx.Tx run inside transaction blocks so the account row
// stays locked for the duration of a ledger mutation.
type WalletRepository interface {
	// Create inserts an empty account row; a concurrent insert for the same
	// userID is not an error (ON CONFLICT DO NOTHING).
	Create(ctx context.Context, tx pgx.Tx, account *domain.WalletAccount) error
	// GetByUserID returns nil, nil for an absent account.
	GetByUserID(ctx context.Context, userID string) (*domain.WalletAccount, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.WalletAccount, error)
	UpdateTotals(ctx context.Context, tx pgx.Tx, userID string, totalPoints, totalRupees int64) error
}

// TransactionRepository defines persistence operations for ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	ListByUser(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, userID string) (*TransactionStats, error)
}

// TransactionListParams holds filter + pagination for listing ledger entries.
type TransactionListParams struct {
	UserID   string
	Type     *domain.TransactionType
	Page     int
	PageSize int
}

// TransactionStats holds aggregated ledger statistics for one account.
type TransactionStats struct {
	TotalTransactions int64
	Credits           int64
	Debits            int64
	PointsCredited    int64 // Sum of positive point deltas
	PointsDebited     int64 // Sum of negative point deltas (reported positive)
}

// ConfirmationRepository stores consumed payment confirmations (durable
// replay-protection layer).
type ConfirmationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, confirmation *domain.ConsumedConfirmation) error
	Get(ctx context.Context, key string) (*domain.ConsumedConfirmation, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
