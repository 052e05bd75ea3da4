package service

import (
	"context"
	"fmt"
	"time"

	"print-wallet-ledger/internal/core/domain"
	"print-wallet-ledger/internal/core/ports"
	"print-wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const replayTTL = 24 * time.Hour

// WalletServiceImpl implements ports.WalletService. Every ledger mutation
// runs inside one database transaction with the account row locked, so the
// read of current totals and the write of updated totals plus the appended
// transaction are a single atomic unit per userID.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	confRepo   ports.ConfirmationRepository
	replay     ports.ReplayGuard
	verifier   ports.SignatureVerifier
	transactor ports.DBTransactor
	secret     string // gateway shared secret for confirmation signatures
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	confRepo ports.ConfirmationRepository,
	replay ports.ReplayGuard,
	verifier ports.SignatureVerifier,
	transactor ports.DBTransactor,
	secret string,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		confRepo:   confRepo,
		replay:     replay,
		verifier:   verifier,
		transactor: transactor,
		secret:     secret,
		log:        log,
	}
}

// mutation is one ledger append, optionally carrying the consumed
// confirmation that must be recorded in the same database transaction.
type mutation struct {
	userID    string
	points    int64
	rupees    int64
	note      string
	source    domain.TransactionSource
	orderID   *string
	paymentID *string
}

// Credit applies a manual credit. The points delta is expected to be
// non-negative but the sign convention is left to the caller; type
// classification uses the points sign only.
func (s *WalletServiceImpl) Credit(ctx context.Context, req ports.AdjustmentRequest) (*domain.WalletAccount, error) {
	return s.apply(ctx, mutation{
		userID: req.UserID,
		points: req.Points,
		rupees: req.Rupees,
		note:   req.Note,
		source: domain.TransactionSourceManual,
	})
}

// Debit applies a manual debit. Amounts already carry a negative sign from
// the caller; the service does not negate.
func (s *WalletServiceImpl) Debit(ctx context.Context, req ports.AdjustmentRequest) (*domain.WalletAccount, error) {
	return s.apply(ctx, mutation{
		userID: req.UserID,
		points: req.Points,
		rupees: req.Rupees,
		note:   req.Note,
		source: domain.TransactionSourceManual,
	})
}

// CreditFromVerifiedPayment verifies the gateway confirmation signature and,
// exactly once per (orderID, paymentID) pair, credits the wallet. A failed
// verification or a replayed pair performs no mutation.
func (s *WalletServiceImpl) CreditFromVerifiedPayment(ctx context.Context, req ports.PaymentCreditRequest) (*domain.WalletAccount, error) {
	conf := req.Confirmation
	if !s.verifier.Verify(s.secret, conf.ConfirmationPayload(), conf.Signature) {
		s.log.Warn().
			Str("order_id", conf.OrderID).
			Str("payment_id", conf.PaymentID).
			Str("user_id", req.UserID).
			Msg("payment confirmation signature rejected")
		return nil, apperror.ErrInvalidSignature()
	}

	key := domain.BuildConfirmationKey(conf.OrderID, conf.PaymentID)

	// Layer 1: Redis reservation (fast path, best-effort). A hit here is a
	// hint only: a reservation whose credit never committed must not block
	// a retry, so the durable layer below has the final word.
	reserved, replayErr := s.replay.CheckAndSet(ctx, key, replayTTL)
	if replayErr != nil {
		s.log.Warn().Err(replayErr).Str("key", key).Msg("redis replay check failed, falling through to DB")
	}

	// Layer 2: durable replay check, the source of truth
	consumed, err := s.confRepo.Get(ctx, key)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("replay check: %w", err))
	}
	if consumed != nil {
		return nil, apperror.ErrConfirmationReplayed()
	}

	account, err := s.apply(ctx, mutation{
		userID:    req.UserID,
		points:    req.Points,
		rupees:    req.Rupees,
		note:      req.Note,
		source:    domain.TransactionSourcePayment,
		orderID:   &conf.OrderID,
		paymentID: &conf.PaymentID,
	})
	if err != nil {
		// Give back a reservation this call took so the TTL cannot hold
		// up a retry of the never-credited confirmation. Consumed pairs
		// stay rejected through the consumed_confirmations row.
		if replayErr == nil && reserved {
			if relErr := s.replay.Release(ctx, key); relErr != nil {
				s.log.Warn().Err(relErr).Str("key", key).Msg("replay reservation release failed")
			}
		}
		return nil, err
	}

	s.log.Info().
		Str("order_id", conf.OrderID).
		Str("payment_id", conf.PaymentID).
		Str("user_id", req.UserID).
		Int64("points", req.Points).
		Int64("rupees", req.Rupees).
		Msg("verified payment credited")

	return account, nil
}

// GetBalance returns the account's aggregate snapshot. Unknown users get
// zero balances, not an error: an account with no transactions is
// indistinguishable from one that was never created.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID string) (domain.Balance, error) {
	if userID == "" {
		return domain.Balance{}, apperror.ErrMissingUserID()
	}
	account, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return domain.Balance{}, apperror.ErrStorageUnavailable(fmt.Errorf("get account: %w", err))
	}
	return account.Balance(), nil
}

// apply performs the atomic read-modify-write: lock (or lazily create) the
// account row, recompute both aggregates, append the transaction, and for
// payment-sourced credits record the consumed confirmation, all in one
// database transaction.
func (s *WalletServiceImpl) apply(ctx context.Context, m mutation) (*domain.WalletAccount, error) {
	if m.userID == "" {
		return nil, apperror.ErrMissingUserID()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, m.userID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("lock account: %w", err))
	}
	now := time.Now().UTC()
	if account == nil {
		// Lazy creation on first transaction. The insert tolerates a
		// concurrent winner; the re-lock below serializes on whichever row
		// ended up in the table.
		seed := &domain.WalletAccount{UserID: m.userID, CreatedAt: now, UpdatedAt: now}
		if err := s.walletRepo.Create(ctx, dbTx, seed); err != nil {
			return nil, apperror.ErrStorageUnavailable(fmt.Errorf("create account: %w", err))
		}
		account, err = s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, m.userID)
		if err != nil {
			return nil, apperror.ErrStorageUnavailable(fmt.Errorf("relock account: %w", err))
		}
		if account == nil {
			return nil, apperror.InternalError(fmt.Errorf("account %s missing after create", m.userID))
		}
	}

	newPoints := account.TotalPoints + m.points
	newRupees := account.TotalRupees + m.rupees
	if newPoints < 0 || newRupees < 0 {
		return nil, apperror.ErrInsufficientBalance()
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		UserID:    m.userID,
		Points:    m.points,
		Rupees:    m.rupees,
		Type:      domain.ClassifyTransaction(m.points),
		Note:      m.note,
		Source:    m.source,
		OrderID:   m.orderID,
		PaymentID: m.paymentID,
		CreatedAt: now,
	}

	if err := s.walletRepo.UpdateTotals(ctx, dbTx, m.userID, newPoints, newRupees); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("update totals: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("append transaction: %w", err))
	}

	if m.source == domain.TransactionSourcePayment {
		entry := &domain.ConsumedConfirmation{
			Key:           domain.BuildConfirmationKey(*m.orderID, *m.paymentID),
			UserID:        m.userID,
			TransactionID: txn.ID,
			ConsumedAt:    now,
		}
		// The unique key makes two racing confirmations commit at most once.
		if err := s.confRepo.Create(ctx, dbTx, entry); err != nil {
			return nil, apperror.ErrConfirmationReplayed()
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	account.TotalPoints = newPoints
	account.TotalRupees = newRupees
	account.UpdatedAt = now

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("user_id", m.userID).
		Str("type", string(txn.Type)).
		Int64("points", m.points).
		Int64("rupees", m.rupees).
		Int64("total_points", newPoints).
		Int64("total_rupees", newRupees).
		Msg("ledger mutation applied")

	return account, nil
}
