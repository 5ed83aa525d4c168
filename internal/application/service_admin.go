package application

import (
	"context"
	"strings"

	"github.com/tymchak1/flow-roles/internal/domain"
)

// Owner returns the current owning subject.
func (s *Service) Owner(ctx context.Context, actor Actor) (string, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return "", domain.ErrUnauthorized
	}
	return s.ownership.Owner(ctx)
}

// TransferOwnership rotates the owning subject. Only the current owner may
// hand off; the core ledger and role logic never consult ownership.
func (s *Service) TransferOwnership(ctx context.Context, actor Actor, newOwner string) error {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.ErrUnauthorized
	}
	newOwner = strings.TrimSpace(newOwner)
	if newOwner == "" {
		return domain.ErrInvalidInput
	}
	owner, err := s.ownership.Owner(ctx)
	if err != nil {
		return err
	}
	if owner != "" && owner != actor.SubjectID {
		return domain.ErrForbidden
	}
	return s.ownership.SetOwner(ctx, newOwner, s.nowFn())
}
