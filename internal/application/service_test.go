package application_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	eventadapter "github.com/tymchak1/flow-roles/internal/adapters/events"
	"github.com/tymchak1/flow-roles/internal/adapters/memory"
	"github.com/tymchak1/flow-roles/internal/adapters/transfer"
	"github.com/tymchak1/flow-roles/internal/application"
	"github.com/tymchak1/flow-roles/internal/domain"
)

type fixture struct {
	store     *memory.Store
	publisher *eventadapter.MemoryDomainPublisher
	mover     *transfer.MemoryMover
	svc       *application.Service

	now     time.Time
	nextKey int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.NewStore(),
		publisher: eventadapter.NewMemoryDomainPublisher(),
		mover:     transfer.NewMemoryMover(),
		now:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	f.svc = application.NewService(application.Dependencies{
		Tx:           f.store,
		Deposits:     f.store,
		Totals:       f.store,
		Roles:        f.store,
		Registry:     f.store,
		Ownership:    f.store,
		Idempotency:  f.store.Idempotency(),
		Outbox:       f.store,
		Funds:        f.mover,
		DomainEvents: f.publisher,
	}).WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) actor(subject string) application.Actor {
	f.nextKey++
	return application.Actor{
		SubjectID:      subject,
		Role:           "member",
		RequestID:      fmt.Sprintf("req-%d", f.nextKey),
		IdempotencyKey: fmt.Sprintf("key-%s-%d", subject, f.nextKey),
	}
}

func (f *fixture) deposit(t *testing.T, subject, amount string, periodDays int) domain.DepositRecord {
	t.Helper()
	record, err := f.svc.Deposit(context.Background(), f.actor(subject), application.DepositInput{
		Amount:         decimal.RequireFromString(amount),
		LockPeriodDays: periodDays,
	})
	if err != nil {
		t.Fatalf("deposit %s for %s: %v", amount, subject, err)
	}
	return record
}

func (f *fixture) totalLocked(t *testing.T) decimal.Decimal {
	t.Helper()
	total, err := f.svc.TotalLocked(context.Background(), f.actor("auditor"))
	if err != nil {
		t.Fatalf("total locked: %v", err)
	}
	return total
}

func (f *fixture) grants(t *testing.T, subject string) map[domain.RoleTag]bool {
	t.Helper()
	tags, _, err := f.svc.Roles(context.Background(), f.actor(subject), "")
	if err != nil {
		t.Fatalf("roles for %s: %v", subject, err)
	}
	out := make(map[domain.RoleTag]bool, len(tags))
	for _, tag := range tags {
		out[tag] = true
	}
	return out
}

func (f *fixture) timedRole(t *testing.T, subject string) domain.TimedRole {
	t.Helper()
	_, role, err := f.svc.Roles(context.Background(), f.actor(subject), "")
	if err != nil {
		t.Fatalf("timed role for %s: %v", subject, err)
	}
	return role
}
