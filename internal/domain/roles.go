package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoleTag string

const (
	RoleLongTermCommitter RoleTag = "long_term_committer"
	RoleFrequentDepositor RoleTag = "frequent_depositor"
	RoleBigDepositor      RoleTag = "big_depositor"
	RoleActiveParticipant RoleTag = "active_participant"
)

// Deposit-classification thresholds, in currency units.
var (
	CommitterMinAmount = decimal.NewFromInt(1)
	BigDepositorAmount = decimal.NewFromInt(5)
	DustThreshold      = decimal.RequireFromString("0.001")
)

// FrequentDepositCount is the lifetime deposit count (including the deposit
// being evaluated) at which the frequent-depositor role is granted.
const FrequentDepositCount = 3

// ActivityWindow is how long the temporary role survives without activity.
const ActivityWindow = 8 * 24 * time.Hour

// ClassifyDeposit evaluates one deposit against the ordered role rules and
// returns the single role outcome, or "" when none applies. The chain is a
// first-match short-circuit: one deposit never yields two roles.
func ClassifyDeposit(amount decimal.Decimal, periodDays int, depositCount int64) RoleTag {
	switch {
	case amount.GreaterThanOrEqual(CommitterMinAmount) && periodDays == LockPeriodLongDays:
		return RoleLongTermCommitter
	case amount.GreaterThanOrEqual(CommitterMinAmount) && depositCount >= FrequentDepositCount:
		return RoleFrequentDepositor
	case amount.GreaterThanOrEqual(BigDepositorAmount):
		return RoleBigDepositor
	case amount.GreaterThan(DustThreshold):
		return RoleActiveParticipant
	default:
		return ""
	}
}

// IsPermanent reports whether a tag, once granted, is never revoked by the
// role engine.
func (t RoleTag) IsPermanent() bool {
	switch t {
	case RoleLongTermCommitter, RoleFrequentDepositor, RoleBigDepositor:
		return true
	default:
		return false
	}
}

// TimedRole is the one temporary role instance an account can hold. It is
// toggled inactive by the sweep, never deleted; re-qualification reactivates
// the same instance.
type TimedRole struct {
	Account    string    `json:"account"`
	Active     bool      `json:"active"`
	LastActive time.Time `json:"last_active"`
	Expiry     time.Time `json:"expiry"`
}

// Refresh pushes the activity window forward from now.
func (tr *TimedRole) Refresh(now time.Time) {
	tr.Active = true
	tr.LastActive = now
	tr.Expiry = now.Add(ActivityWindow)
}

// Lapsed reports whether the role has outlived its window. The boundary is
// strict: a role probed at exactly its expiry instant is not yet a candidate.
func (tr TimedRole) Lapsed(now time.Time) bool {
	return tr.Active && now.After(tr.Expiry)
}
