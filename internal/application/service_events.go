package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tymchak1/flow-roles/internal/contracts"
	"github.com/tymchak1/flow-roles/internal/domain"
	"github.com/tymchak1/flow-roles/internal/ports"
)

// FlushOutbox publishes pending outbox records in one bounded batch. The
// flush worker calls this on its poll interval; flushing is outside the
// mutation transactions, so a publish failure leaves the record pending for
// the next round.
func (s *Service) FlushOutbox(ctx context.Context) error {
	pending, err := s.outbox.ListPending(ctx, s.cfg.OutboxFlushBatchSize)
	if err != nil {
		return err
	}
	for _, record := range pending {
		if record.EventClass != domain.CanonicalEventClassDomain {
			continue
		}
		if err := s.domainEvents.PublishDomain(ctx, record.Envelope); err != nil {
			return err
		}
		if err := s.outbox.MarkSent(ctx, record.RecordID, s.nowFn()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) enqueueDepositCreated(ctx context.Context, record domain.DepositRecord) error {
	payload := contracts.DepositCreatedPayload{
		Account:    record.Account,
		Index:      record.Index,
		Amount:     record.Amount.String(),
		PeriodDays: record.PeriodDays,
		LockUntil:  record.LockUntil.Format(time.RFC3339),
	}
	return s.enqueueDomain(ctx, domain.EventDepositCreated, record.Account, record.CreatedAt, payload)
}

func (s *Service) enqueueDepositWithdrawn(ctx context.Context, account string, index int, amount decimal.Decimal, at time.Time) error {
	payload := contracts.DepositWithdrawnPayload{
		Account:     account,
		Index:       index,
		Amount:      amount.String(),
		WithdrawnAt: at.Format(time.RFC3339),
	}
	return s.enqueueDomain(ctx, domain.EventDepositWithdrawn, account, at, payload)
}

func (s *Service) enqueueRoleGranted(ctx context.Context, account string, tag domain.RoleTag, expiry *time.Time, at time.Time) error {
	payload := contracts.RoleGrantedPayload{
		Account:   account,
		Role:      string(tag),
		Permanent: tag.IsPermanent(),
		GrantedAt: at.Format(time.RFC3339),
	}
	if expiry != nil {
		payload.Expiry = expiry.Format(time.RFC3339)
	}
	return s.enqueueDomain(ctx, domain.EventRoleGranted, account, at, payload)
}

func (s *Service) enqueueRoleRevoked(ctx context.Context, account string, lastActive, at time.Time) error {
	payload := contracts.RoleRevokedPayload{
		Account:    account,
		Role:       string(domain.RoleActiveParticipant),
		LastActive: lastActive.Format(time.RFC3339),
		RevokedAt:  at.Format(time.RFC3339),
		SweptBy:    s.cfg.TriggerRegistryID,
	}
	return s.enqueueDomain(ctx, domain.EventRoleRevoked, account, at, payload)
}

func (s *Service) enqueueDomain(ctx context.Context, eventType, account string, occurredAt time.Time, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.outbox.Enqueue(ctx, ports.OutboxRecord{
		RecordID:   uuid.NewString(),
		EventClass: domain.CanonicalEventClassDomain,
		Envelope: contracts.EventEnvelope{
			EventID:          uuid.NewString(),
			EventType:        eventType,
			EventClass:       domain.CanonicalEventClassDomain,
			OccurredAt:       occurredAt,
			PartitionKeyPath: "data.account",
			PartitionKey:     account,
			SourceService:    s.cfg.ServiceName,
			TraceID:          uuid.NewString(),
			SchemaVersion:    "v1",
			Data:             data,
		},
		CreatedAt: s.nowFn(),
	})
}
