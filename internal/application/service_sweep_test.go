package application_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tymchak1/flow-roles/internal/domain"
)

func TestProbeAndSweepLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.002", 180)

	probe, err := f.svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if probe.WorkNeeded {
		t.Fatalf("probe found work inside the activity window: %v", probe.Candidates)
	}

	f.advance(9 * 24 * time.Hour)
	probe, err = f.svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("probe after lapse: %v", err)
	}
	if !probe.WorkNeeded || len(probe.Candidates) != 1 || probe.Candidates[0] != "alice" {
		t.Fatalf("probe should surface the lapsed account: %+v", probe)
	}

	// Probe is read-only: repeating it yields the same answer.
	again, err := f.svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("second probe: %v", err)
	}
	if len(again.Candidates) != 1 {
		t.Fatalf("probe mutated state: %+v", again)
	}

	swept, err := f.svc.Sweep(context.Background(), probe.Candidates)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(swept) != 1 || swept[0] != "alice" {
		t.Fatalf("sweep result %v, want [alice]", swept)
	}
	if f.grants(t, "alice")[domain.RoleActiveParticipant] {
		t.Fatalf("sweep left the activity grant in place")
	}
	if f.timedRole(t, "alice").Active {
		t.Fatalf("sweep left the timed role active")
	}

	probe, err = f.svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("probe after sweep: %v", err)
	}
	if probe.WorkNeeded {
		t.Fatalf("swept account still probed as a candidate: %+v", probe)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.002", 180)
	f.advance(9 * 24 * time.Hour)

	if _, err := f.svc.Sweep(context.Background(), []string{"alice"}); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	swept, err := f.svc.Sweep(context.Background(), []string{"alice", "alice", " ", "ghost"})
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(swept) != 0 {
		t.Fatalf("repeated sweep deactivated something: %v", swept)
	}
}

func TestSweepRevalidatesRefreshedCandidates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.002", 180)
	f.advance(9 * 24 * time.Hour)

	probe, err := f.svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("probe: %v", err)
	}

	// Alice deposits again between probe and sweep; the stale candidate
	// list must not take her role.
	f.deposit(t, "alice", "0.002", 180)
	swept, err := f.svc.Sweep(context.Background(), probe.Candidates)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(swept) != 0 {
		t.Fatalf("sweep acted on a refreshed account: %v", swept)
	}
	if !f.grants(t, "alice")[domain.RoleActiveParticipant] {
		t.Fatalf("refreshed account lost its role to a stale sweep")
	}
}

func TestSweepReactivationAfterRequalifying(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.002", 180)
	f.advance(9 * 24 * time.Hour)
	if _, err := f.svc.Sweep(context.Background(), []string{"alice"}); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	f.deposit(t, "alice", "0.002", 180)
	if !f.grants(t, "alice")[domain.RoleActiveParticipant] {
		t.Fatalf("re-qualifying deposit did not restore the role")
	}
	role := f.timedRole(t, "alice")
	if !role.Active {
		t.Fatalf("timed role not reactivated")
	}

	f.advance(9 * 24 * time.Hour)
	probe, err := f.svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if len(probe.Candidates) != 1 || probe.Candidates[0] != "alice" {
		t.Fatalf("reactivated account should lapse again: %+v", probe)
	}
}

func TestProbeCapsCandidatesPerRound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for i := 0; i < 150; i++ {
		f.deposit(t, fmt.Sprintf("acct-%03d", i), "0.002", 180)
	}
	f.advance(9 * 24 * time.Hour)

	probe, err := f.svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("first probe: %v", err)
	}
	if len(probe.Candidates) != 100 {
		t.Fatalf("first round should cap at 100 candidates, got %d", len(probe.Candidates))
	}
	if probe.Candidates[0] != "acct-000" {
		t.Fatalf("probe must walk the registry in insertion order, got %s first", probe.Candidates[0])
	}

	swept, err := f.svc.Sweep(context.Background(), probe.Candidates)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if len(swept) != 100 {
		t.Fatalf("first sweep handled %d accounts, want 100", len(swept))
	}

	probe, err = f.svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("second probe: %v", err)
	}
	if len(probe.Candidates) != 50 {
		t.Fatalf("second round should drain the remaining 50, got %d", len(probe.Candidates))
	}
	swept, err = f.svc.Sweep(context.Background(), probe.Candidates)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(swept) != 50 {
		t.Fatalf("second sweep handled %d accounts, want 50", len(swept))
	}

	probe, err = f.svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("final probe: %v", err)
	}
	if probe.WorkNeeded {
		t.Fatalf("backlog not drained: %+v", probe)
	}
}

func TestSweepEmitsRevocationEvents(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.002", 180)
	f.advance(9 * 24 * time.Hour)
	if _, err := f.svc.Sweep(context.Background(), []string{"alice"}); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if err := f.svc.FlushOutbox(context.Background()); err != nil {
		t.Fatalf("flush outbox: %v", err)
	}

	revoked := 0
	for _, event := range f.publisher.Events() {
		if event.EventType == domain.EventRoleRevoked {
			revoked++
			if event.PartitionKey != "alice" {
				t.Fatalf("revocation partitioned by %q, want account", event.PartitionKey)
			}
		}
	}
	if revoked != 1 {
		t.Fatalf("expected one revocation event, got %d", revoked)
	}
}
