package postgres

import (
	"context"
	"errors"
	"fmt"

	"print-wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ConfirmationRepo implements ports.ConfirmationRepository. The primary key
// on the confirmation key column is what makes two racing confirmations for
// the same (orderID, paymentID) pair commit at most once.
type ConfirmationRepo struct {
	pool Pool
}

// NewConfirmationRepo creates a new ConfirmationRepo.
func NewConfirmationRepo(pool Pool) *ConfirmationRepo {
	return &ConfirmationRepo{pool: pool}
}

// Create records a consumed confirmation within the ledger transaction.
// A duplicate key violation surfaces as an error and rolls the credit back.
func (r *ConfirmationRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.ConsumedConfirmation) error {
	query := `INSERT INTO consumed_confirmations (key, user_id, transaction_id, consumed_at)
		VALUES ($1, $2, $3, $4)`

	_, err := tx.Exec(ctx, query, c.Key, c.UserID, c.TransactionID, c.ConsumedAt)
	if err != nil {
		return fmt.Errorf("insert consumed confirmation: %w", err)
	}
	return nil
}

// Get fetches a consumed confirmation by key. Returns nil, nil when the
// pair has never been consumed.
func (r *ConfirmationRepo) Get(ctx context.Context, key string) (*domain.ConsumedConfirmation, error) {
	query := `SELECT key, user_id, transaction_id, consumed_at
		FROM consumed_confirmations WHERE key = $1`

	c := &domain.ConsumedConfirmation{}
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&c.Key, &c.UserID, &c.TransactionID, &c.ConsumedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consumed confirmation: %w", err)
	}
	return c, nil
}
