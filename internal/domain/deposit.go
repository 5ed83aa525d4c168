package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DepositState string

const (
	DepositStateLocked   DepositState = "locked"
	DepositStateUnlocked DepositState = "unlocked"
)

// Canonical lock periods, in days. Exact match only: a deposit asking for
// any other duration is rejected, there is no range tolerance.
const (
	LockPeriodShortDays  = 180
	LockPeriodMediumDays = 365
	LockPeriodLongDays   = 5 * 365
)

// LockDuration maps a requested period in days onto its duration.
// Off-by-one values (179, 181, 364, 366, ...) fail like any other.
func LockDuration(days int) (time.Duration, error) {
	switch days {
	case LockPeriodShortDays, LockPeriodMediumDays, LockPeriodLongDays:
		return time.Duration(days) * 24 * time.Hour, nil
	default:
		return 0, ErrInvalidLockPeriod
	}
}

// DepositRecord is one slot in an account's append-only deposit sequence.
// Withdrawal zeroes the slot instead of removing it so externally cached
// indices stay valid.
type DepositRecord struct {
	Account    string          `json:"account"`
	Index      int             `json:"index"`
	Amount     decimal.Decimal `json:"amount"`
	PeriodDays int             `json:"period_days"`
	CreatedAt  time.Time       `json:"created_at"`
	LockUntil  time.Time       `json:"lock_until"`
	State      DepositState    `json:"state"`
	Withdrawn  bool            `json:"withdrawn"`
}

// AdvanceState lazily moves a locked record to unlocked once the lock has
// expired. Unlock happens at exactly LockUntil, not one instant later.
func (r *DepositRecord) AdvanceState(now time.Time) {
	if r.State == DepositStateLocked && !now.Before(r.LockUntil) {
		r.State = DepositStateUnlocked
	}
}

// MarkWithdrawn applies the one-shot terminal transition: fields are zeroed,
// the slot is kept. Callers must have validated state beforehand.
func (r *DepositRecord) MarkWithdrawn() {
	r.Amount = decimal.Zero
	r.CreatedAt = time.Time{}
	r.LockUntil = time.Time{}
	r.PeriodDays = 0
	r.State = DepositStateUnlocked
	r.Withdrawn = true
}

// AccountTotals carries the per-account aggregates the ledger maintains
// alongside the record sequence. LifetimeDeposited is an append-only shadow
// total: it keeps counting amounts whose live record has been zeroed.
type AccountTotals struct {
	Account           string          `json:"account"`
	DepositCount      int64           `json:"deposit_count"`
	LifetimeDeposited decimal.Decimal `json:"lifetime_deposited"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
