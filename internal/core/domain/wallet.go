package domain

import "time"

// WalletAccount is the per-user aggregate of the ledger. Both totals are
// running sums over the account's transaction deltas and must stay equal to
// those sums at all times; rupee amounts are held in minor units (paise).
type WalletAccount struct {
	UserID      string    `json:"user_id"`
	TotalPoints int64     `json:"total_points"`
	TotalRupees int64     `json:"total_rupees"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Balance is the snapshot returned at the API boundary. An account that was
// never created reports zero balances, indistinguishable from an account
// with no transactions.
type Balance struct {
	TotalPoints int64 `json:"totalPoints"`
	TotalRupees int64 `json:"totalRupees"`
}

// Balance returns the account's aggregate snapshot.
func (a *WalletAccount) Balance() Balance {
	if a == nil {
		return Balance{}
	}
	return Balance{TotalPoints: a.TotalPoints, TotalRupees: a.TotalRupees}
}
