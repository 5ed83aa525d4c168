package application

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tymchak1/flow-roles/internal/domain"
)

// evaluateDeposit runs the ordered role rules for one deposit. depositCount
// already includes the deposit being evaluated. Permanent grants are
// monotonic; the temporary branch creates or reactivates the account's timed
// role and keeps registry insertion idempotent.
func (s *Service) evaluateDeposit(ctx context.Context, account string, amount decimal.Decimal, periodDays int, depositCount int64, now time.Time) error {
	tag := domain.ClassifyDeposit(amount, periodDays, depositCount)
	if tag == "" {
		return nil
	}
	if tag.IsPermanent() {
		has, err := s.roles.HasGrant(ctx, account, tag)
		if err != nil {
			return err
		}
		if has {
			return nil
		}
		if err := s.roles.AddGrant(ctx, account, tag, now); err != nil {
			return err
		}
		return s.enqueueRoleGranted(ctx, account, tag, nil, now)
	}

	role, ok, err := s.roles.TimedRole(ctx, account)
	if err != nil {
		return err
	}
	if !ok {
		role = domain.TimedRole{Account: account}
	}
	wasActive := role.Active
	role.Refresh(now)
	if err := s.roles.SaveTimedRole(ctx, role); err != nil {
		return err
	}
	if err := s.roles.AddGrant(ctx, account, domain.RoleActiveParticipant, now); err != nil {
		return err
	}
	member, err := s.registry.IsMember(ctx, account)
	if err != nil {
		return err
	}
	if !member {
		if err := s.registry.Add(ctx, account, now); err != nil {
			return err
		}
	}
	if !wasActive {
		expiry := role.Expiry
		return s.enqueueRoleGranted(ctx, account, domain.RoleActiveParticipant, &expiry, now)
	}
	return nil
}

// refreshActivity pushes the temporary-role window forward on any deposit or
// withdrawal by an account that currently holds it. No-op otherwise: activity
// alone never grants the role.
func (s *Service) refreshActivity(ctx context.Context, account string, now time.Time) error {
	role, ok, err := s.roles.TimedRole(ctx, account)
	if err != nil {
		return err
	}
	if !ok || !role.Active {
		return nil
	}
	role.Refresh(now)
	return s.roles.SaveTimedRole(ctx, role)
}

func (s *Service) Roles(ctx context.Context, actor Actor, account string) ([]domain.RoleTag, domain.TimedRole, error) {
	account, err := s.resolveAccount(actor, account)
	if err != nil {
		return nil, domain.TimedRole{}, err
	}
	grants, err := s.roles.Grants(ctx, account)
	if err != nil {
		return nil, domain.TimedRole{}, err
	}
	role, ok, err := s.roles.TimedRole(ctx, account)
	if err != nil {
		return nil, domain.TimedRole{}, err
	}
	if !ok {
		role = domain.TimedRole{Account: account}
	}
	return grants, role, nil
}

func normalizeAccounts(accounts []string) []string {
	out := make([]string, 0, len(accounts))
	seen := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
