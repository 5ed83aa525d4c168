package application_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tymchak1/flow-roles/internal/contracts"
	"github.com/tymchak1/flow-roles/internal/domain"
)

func TestFlushOutboxPublishesOnceInOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.deposit(t, "alice", "0.002", 180)

	if err := f.svc.FlushOutbox(context.Background()); err != nil {
		t.Fatalf("flush outbox: %v", err)
	}
	events := f.publisher.Events()
	if len(events) != 2 {
		t.Fatalf("expected deposit and grant events, got %d", len(events))
	}
	if events[0].EventType != domain.EventDepositCreated {
		t.Fatalf("first event %q, want deposit created", events[0].EventType)
	}
	if events[1].EventType != domain.EventRoleGranted {
		t.Fatalf("second event %q, want role granted", events[1].EventType)
	}

	var payload contracts.DepositCreatedPayload
	if err := json.Unmarshal(events[0].Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Account != "alice" || payload.Amount != "0.002" || payload.PeriodDays != 180 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if events[0].PartitionKey != "alice" || events[0].PartitionKeyPath != "data.account" {
		t.Fatalf("envelope not partitioned by account: %+v", events[0])
	}

	// A second flush has nothing left to do.
	if err := f.svc.FlushOutbox(context.Background()); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if got := len(f.publisher.Events()); got != 2 {
		t.Fatalf("second flush re-published: %d events", got)
	}
}
