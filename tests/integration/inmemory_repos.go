package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"print-wallet-ledger/internal/core/domain"
	"print-wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu       sync.RWMutex
	accounts map[string]*domain.WalletAccount
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{accounts: make(map[string]*domain.WalletAccount)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.WalletAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.UserID]; ok {
		// concurrent first-insert winner; mirrors ON CONFLICT DO NOTHING
		return nil
	}
	copied := *a
	r.accounts[a.UserID] = &copied
	return nil
}

func (r *inMemoryWalletRepo) GetByUserID(ctx context.Context, userID string) (*domain.WalletAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[userID]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *inMemoryWalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.WalletAccount, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *inMemoryWalletRepo) UpdateTotals(ctx context.Context, tx pgx.Tx, userID string, totalPoints, totalRupees int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return fmt.Errorf("wallet account not found: %s", userID)
	}
	a.TotalPoints = totalPoints
	a.TotalRupees = totalRupees
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, *t)
	return nil
}

func (r *inMemoryTransactionRepo) ListByUser(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.UserID != params.UserID {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		result = append(result, t)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) GetStats(ctx context.Context, userID string) (*ports.TransactionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.TransactionStats{}
	for _, t := range r.transactions {
		if t.UserID != userID {
			continue
		}
		stats.TotalTransactions++
		if t.Type == domain.TransactionTypeCredit {
			stats.Credits++
		} else {
			stats.Debits++
		}
		if t.Points > 0 {
			stats.PointsCredited += t.Points
		} else if t.Points < 0 {
			stats.PointsDebited += -t.Points
		}
	}
	return stats, nil
}

// --- In-Memory Confirmation Repo ---

type inMemoryConfirmationRepo struct {
	mu       sync.RWMutex
	consumed map[string]*domain.ConsumedConfirmation
}

func newInMemoryConfirmationRepo() *inMemoryConfirmationRepo {
	return &inMemoryConfirmationRepo{consumed: make(map[string]*domain.ConsumedConfirmation)}
}

func (r *inMemoryConfirmationRepo) Create(ctx context.Context, tx pgx.Tx, c *domain.ConsumedConfirmation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.consumed[c.Key]; ok {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	copied := *c
	r.consumed[c.Key] = &copied
	return nil
}

func (r *inMemoryConfirmationRepo) Get(ctx context.Context, key string) (*domain.ConsumedConfirmation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.consumed[key]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes transactions with a single mutex, standing
// in for the row lock the postgres adapter takes with FOR UPDATE. Begin
// blocks until the previous transaction commits or rolls back.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: t.mu.Unlock}, nil
}

// lockedTx is a pgx.Tx that releases the transactor lock exactly once.
type lockedTx struct {
	release func()
	done    sync.Once
}

func (t *lockedTx) finish() {
	t.done.Do(t.release)
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.finish(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.finish(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }
