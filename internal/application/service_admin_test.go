package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tymchak1/flow-roles/internal/domain"
)

func TestOwnershipTransferChain(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// Unowned vault: the first transfer claims it.
	if err := f.svc.TransferOwnership(context.Background(), f.actor("alice"), "alice"); err != nil {
		t.Fatalf("initial claim: %v", err)
	}
	owner, err := f.svc.Owner(context.Background(), f.actor("alice"))
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner != "alice" {
		t.Fatalf("owner %q, want alice", owner)
	}

	if err := f.svc.TransferOwnership(context.Background(), f.actor("bob"), "bob"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner transfer: expected ErrForbidden, got %v", err)
	}

	if err := f.svc.TransferOwnership(context.Background(), f.actor("alice"), "bob"); err != nil {
		t.Fatalf("owner handoff: %v", err)
	}
	owner, err = f.svc.Owner(context.Background(), f.actor("alice"))
	if err != nil {
		t.Fatalf("owner after handoff: %v", err)
	}
	if owner != "bob" {
		t.Fatalf("owner %q, want bob", owner)
	}
}

func TestTransferOwnershipValidatesInput(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	if err := f.svc.TransferOwnership(context.Background(), f.actor("alice"), "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank owner: expected ErrInvalidInput, got %v", err)
	}
}
