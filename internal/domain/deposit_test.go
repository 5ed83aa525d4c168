package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLockDurationExactMatchOnly(t *testing.T) {
	t.Parallel()

	for _, days := range []int{180, 365, 1825} {
		d, err := LockDuration(days)
		if err != nil {
			t.Fatalf("period %d: %v", days, err)
		}
		if want := time.Duration(days) * 24 * time.Hour; d != want {
			t.Fatalf("period %d: got %v want %v", days, d, want)
		}
	}
	for _, days := range []int{0, -180, 179, 181, 364, 366, 200, 1824, 1826, 730} {
		if _, err := LockDuration(days); !errors.Is(err, ErrInvalidLockPeriod) {
			t.Fatalf("period %d: expected ErrInvalidLockPeriod, got %v", days, err)
		}
	}
}

func TestAdvanceStateUnlocksAtExactExpiry(t *testing.T) {
	t.Parallel()

	until := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	record := DepositRecord{State: DepositStateLocked, LockUntil: until}

	record.AdvanceState(until.Add(-time.Second))
	if record.State != DepositStateLocked {
		t.Fatalf("record unlocked one second early")
	}
	record.AdvanceState(until)
	if record.State != DepositStateUnlocked {
		t.Fatalf("record still locked at its exact expiry instant")
	}
}

func TestMarkWithdrawnZeroesSlotButKeepsIdentity(t *testing.T) {
	t.Parallel()

	record := DepositRecord{
		Account:    "acct-1",
		Index:      2,
		Amount:     decimal.NewFromInt(7),
		PeriodDays: 365,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		LockUntil:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		State:      DepositStateUnlocked,
	}
	record.MarkWithdrawn()

	if !record.Withdrawn {
		t.Fatalf("record not marked withdrawn")
	}
	if !record.Amount.IsZero() || record.PeriodDays != 0 || !record.CreatedAt.IsZero() || !record.LockUntil.IsZero() {
		t.Fatalf("withdrawn record not zeroed: %+v", record)
	}
	if record.Account != "acct-1" || record.Index != 2 {
		t.Fatalf("withdrawal changed slot identity: %+v", record)
	}
}
