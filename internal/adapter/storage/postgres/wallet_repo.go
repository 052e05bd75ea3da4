package postgres

import (
	"context"
	"errors"
	"fmt"

	"print-wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts an empty account row. Losing an insert race to a concurrent
// first transaction for the same user is not an error; the caller re-locks
// whichever row won.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.WalletAccount) error {
	query := `INSERT INTO wallet_accounts (user_id, total_points, total_rupees, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING`

	_, err := tx.Exec(ctx, query,
		a.UserID, a.TotalPoints, a.TotalRupees, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet account: %w", err)
	}
	return nil
}

// GetByUserID fetches an account without locking. Returns nil, nil when the
// account does not exist.
func (r *WalletRepo) GetByUserID(ctx context.Context, userID string) (*domain.WalletAccount, error) {
	query := `SELECT user_id, total_points, total_rupees, created_at, updated_at
		FROM wallet_accounts WHERE user_id = $1`

	a := &domain.WalletAccount{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&a.UserID, &a.TotalPoints, &a.TotalRupees, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet account: %w", err)
	}
	return a, nil
}

// GetByUserIDForUpdate fetches an account with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.WalletAccount, error) {
	query := `SELECT user_id, total_points, total_rupees, created_at, updated_at
		FROM wallet_accounts WHERE user_id = $1 FOR UPDATE`

	a := &domain.WalletAccount{}
	err := tx.QueryRow(ctx, query, userID).Scan(
		&a.UserID, &a.TotalPoints, &a.TotalRupees, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet account for update: %w", err)
	}
	return a, nil
}

// UpdateTotals writes both aggregates within a transaction. The row must be
// held FOR UPDATE by the same transaction.
func (r *WalletRepo) UpdateTotals(ctx context.Context, tx pgx.Tx, userID string, totalPoints, totalRupees int64) error {
	query := `UPDATE wallet_accounts SET total_points = $1, total_rupees = $2, updated_at = NOW() WHERE user_id = $3`

	tag, err := tx.Exec(ctx, query, totalPoints, totalRupees, userID)
	if err != nil {
		return fmt.Errorf("update wallet totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet account not found: %s", userID)
	}
	return nil
}
