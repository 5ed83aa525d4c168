package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestClassifyDepositOrderedRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		amount string
		period int
		count  int64
		want   RoleTag
	}{
		{"long lock wins over everything", "10", 1825, 5, RoleLongTermCommitter},
		{"long lock needs a whole unit", "0.5", 1825, 5, RoleActiveParticipant},
		{"third deposit is frequent", "1", 365, 3, RoleFrequentDepositor},
		{"frequent beats big", "100", 365, 3, RoleFrequentDepositor},
		{"second deposit is not frequent", "1", 365, 2, RoleActiveParticipant},
		{"big depositor at threshold", "5", 180, 1, RoleBigDepositor},
		{"just under big threshold", "4.9999999999", 180, 1, RoleActiveParticipant},
		{"just above dust", "0.002", 180, 1, RoleActiveParticipant},
		{"dust threshold itself is excluded", "0.001", 180, 1, ""},
		{"below dust", "0.0005", 180, 1, ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyDeposit(decimal.RequireFromString(tc.amount), tc.period, tc.count)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestPermanence(t *testing.T) {
	t.Parallel()

	for _, tag := range []RoleTag{RoleLongTermCommitter, RoleFrequentDepositor, RoleBigDepositor} {
		if !tag.IsPermanent() {
			t.Fatalf("%s should be permanent", tag)
		}
	}
	if RoleActiveParticipant.IsPermanent() {
		t.Fatalf("active participant should be temporary")
	}
}

func TestTimedRoleLapseBoundary(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	role := TimedRole{Account: "acct-1"}
	role.Refresh(start)

	if role.Expiry != start.Add(ActivityWindow) {
		t.Fatalf("expiry not one activity window out: %v", role.Expiry)
	}
	if role.Lapsed(role.Expiry) {
		t.Fatalf("role lapsed at its exact expiry instant")
	}
	if !role.Lapsed(role.Expiry.Add(time.Nanosecond)) {
		t.Fatalf("role not lapsed just past expiry")
	}

	role.Active = false
	if role.Lapsed(role.Expiry.Add(time.Hour)) {
		t.Fatalf("inactive role reported as lapsed")
	}
}

func TestRefreshPushesWindowForward(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	role := TimedRole{Account: "acct-1"}
	role.Refresh(start)
	firstExpiry := role.Expiry

	later := start.Add(5 * 24 * time.Hour)
	role.Refresh(later)
	if !role.Expiry.After(firstExpiry) {
		t.Fatalf("refresh did not extend expiry")
	}
	if role.Expiry != later.Add(ActivityWindow) {
		t.Fatalf("refreshed expiry not anchored at refresh time")
	}
}
