package service

import (
	"context"
	"fmt"

	"print-wallet-ledger/internal/core/domain"
	"print-wallet-ledger/internal/core/ports"
	"print-wallet-ledger/pkg/apperror"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportingServiceImpl implements ports.ReportingService over the
// transaction repository.
type ReportingServiceImpl struct {
	txRepo ports.TransactionRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(txRepo ports.TransactionRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{txRepo: txRepo}
}

// ListTransactions returns one page of an account's ledger history, newest
// first, with the total entry count.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.UserID == "" {
		return nil, 0, apperror.ErrMissingUserID()
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	txns, total, err := s.txRepo.ListByUser(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrStorageUnavailable(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// GetStats returns aggregated ledger statistics for one account.
func (s *ReportingServiceImpl) GetStats(ctx context.Context, userID string) (*ports.TransactionStats, error) {
	if userID == "" {
		return nil, apperror.ErrMissingUserID()
	}
	stats, err := s.txRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(fmt.Errorf("transaction stats: %w", err))
	}
	return stats, nil
}
