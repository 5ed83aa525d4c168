package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/tymchak1/flow-roles/internal/domain"
)

func TestLongTermCommitterGrantedOnLongLock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "1", 1825)

	grants := f.grants(t, "alice")
	if !grants[domain.RoleLongTermCommitter] {
		t.Fatalf("long lock at the minimum amount should grant the committer role: %v", grants)
	}
	if grants[domain.RoleActiveParticipant] {
		t.Fatalf("classification must stop at the first match: %v", grants)
	}
}

func TestFrequentDepositorOnThirdQualifyingDeposit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "1", 365)
	f.deposit(t, "alice", "1", 365)
	if f.grants(t, "alice")[domain.RoleFrequentDepositor] {
		t.Fatalf("frequent depositor granted before the third deposit")
	}

	f.deposit(t, "alice", "1", 365)
	grants := f.grants(t, "alice")
	if !grants[domain.RoleFrequentDepositor] {
		t.Fatalf("third qualifying deposit should grant frequent depositor: %v", grants)
	}
}

func TestBigDepositorAtThreshold(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "5", 180)
	grants := f.grants(t, "alice")
	if !grants[domain.RoleBigDepositor] {
		t.Fatalf("deposit at the big threshold should grant the role: %v", grants)
	}
	if grants[domain.RoleActiveParticipant] {
		t.Fatalf("a big deposit must not also grant the activity role: %v", grants)
	}
}

func TestActiveParticipantWindowAndRefresh(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.002", 180)

	grants := f.grants(t, "alice")
	if !grants[domain.RoleActiveParticipant] {
		t.Fatalf("above-dust deposit should grant the activity role: %v", grants)
	}
	role := f.timedRole(t, "alice")
	if !role.Active {
		t.Fatalf("timed role not active after grant")
	}
	if want := f.now.Add(domain.ActivityWindow); !role.Expiry.Equal(want) {
		t.Fatalf("expiry %v, want %v", role.Expiry, want)
	}

	f.advance(5 * 24 * time.Hour)
	f.deposit(t, "alice", "0.002", 180)
	refreshed := f.timedRole(t, "alice")
	if want := f.now.Add(domain.ActivityWindow); !refreshed.Expiry.Equal(want) {
		t.Fatalf("second deposit did not push the window: %v, want %v", refreshed.Expiry, want)
	}
}

func TestWithdrawalRefreshesActivityWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.002", 180)
	f.deposit(t, "alice", "1", 180)
	f.advance(181 * 24 * time.Hour)

	if _, err := f.svc.Withdraw(context.Background(), f.actor("alice"), 1); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	role := f.timedRole(t, "alice")
	if want := f.now.Add(domain.ActivityWindow); !role.Expiry.Equal(want) {
		t.Fatalf("withdrawal did not refresh the window: %v, want %v", role.Expiry, want)
	}
}

func TestDustDepositGrantsNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.001", 180)
	if grants := f.grants(t, "alice"); len(grants) != 0 {
		t.Fatalf("dust deposit granted roles: %v", grants)
	}
	if role := f.timedRole(t, "alice"); role.Active {
		t.Fatalf("dust deposit activated the timed role")
	}
}

func TestRegistryMembershipInsertedOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.002", 180)
	f.deposit(t, "alice", "0.002", 180)

	f.advance(9 * 24 * time.Hour)
	if _, err := f.svc.Sweep(context.Background(), []string{"alice"}); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	// Re-qualification after a sweep reuses the existing membership.
	f.deposit(t, "alice", "0.002", 180)

	members, err := f.store.Members(context.Background())
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0] != "alice" {
		t.Fatalf("account must appear in the registry exactly once: %v", members)
	}
}

func TestPermanentGrantIsMonotonic(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "5", 180)
	f.deposit(t, "alice", "6", 180)

	if err := f.svc.FlushOutbox(context.Background()); err != nil {
		t.Fatalf("flush outbox: %v", err)
	}
	granted := 0
	for _, event := range f.publisher.Events() {
		if event.EventType == domain.EventRoleGranted {
			granted++
		}
	}
	if granted != 1 {
		t.Fatalf("repeat qualification should not re-emit the grant, got %d grant events", granted)
	}
}
