package application

import (
	"context"

	"github.com/tymchak1/flow-roles/internal/domain"
)

// Probe scans the temp-role registry in insertion order and reports up to
// SweepBatchSize accounts whose activity window has lapsed. Strictly
// read-only: callers may probe speculatively and discard the result. When
// the registry holds more lapsed entries than the cap, repeated probe/sweep
// rounds drain the backlog.
func (s *Service) Probe(ctx context.Context) (ProbeResult, error) {
	members, err := s.registry.Members(ctx)
	if err != nil {
		return ProbeResult{}, err
	}
	now := s.nowFn()
	candidates := make([]string, 0, s.cfg.SweepBatchSize)
	for _, account := range members {
		role, ok, err := s.roles.TimedRole(ctx, account)
		if err != nil {
			return ProbeResult{}, err
		}
		if !ok || !role.Lapsed(now) {
			continue
		}
		candidates = append(candidates, account)
		if len(candidates) >= s.cfg.SweepBatchSize {
			break
		}
	}
	return ProbeResult{WorkNeeded: len(candidates) > 0, Candidates: candidates}, nil
}

// Sweep deactivates the temporary role for each candidate that has actually
// lapsed. Per-entry it is a safe no-op for accounts that are already
// inactive, unknown, or were refreshed between probe and sweep; the lapse is
// re-checked here because the candidate list arrives from an untrusted
// external trigger.
func (s *Service) Sweep(ctx context.Context, candidates []string) ([]string, error) {
	candidates = normalizeAccounts(candidates)
	if len(candidates) == 0 {
		return nil, nil
	}
	swept := make([]string, 0, len(candidates))
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		now := s.nowFn()
		for _, account := range candidates {
			role, ok, err := s.roles.TimedRole(ctx, account)
			if err != nil {
				return err
			}
			if !ok || !role.Lapsed(now) {
				continue
			}
			lastActive := role.LastActive
			role.Active = false
			if err := s.roles.SaveTimedRole(ctx, role); err != nil {
				return err
			}
			if err := s.roles.RemoveGrant(ctx, account, domain.RoleActiveParticipant); err != nil {
				return err
			}
			if err := s.enqueueRoleRevoked(ctx, account, lastActive, now); err != nil {
				return err
			}
			swept = append(swept, account)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return swept, nil
}
