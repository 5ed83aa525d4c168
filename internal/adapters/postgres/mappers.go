package postgres

import (
	"encoding/json"

	"github.com/tymchak1/flow-roles/internal/contracts"
	"github.com/tymchak1/flow-roles/internal/domain"
	"github.com/tymchak1/flow-roles/internal/ports"
)

func toDepositModel(record domain.DepositRecord) depositModel {
	m := depositModel{
		Account:     record.Account,
		RecordIndex: record.Index,
		Amount:      record.Amount,
		PeriodDays:  record.PeriodDays,
		State:       string(record.State),
		Withdrawn:   record.Withdrawn,
	}
	if !record.CreatedAt.IsZero() {
		created := record.CreatedAt
		m.CreatedAt = &created
	}
	if !record.LockUntil.IsZero() {
		until := record.LockUntil
		m.LockUntil = &until
	}
	return m
}

func fromDepositModel(m depositModel) domain.DepositRecord {
	record := domain.DepositRecord{
		Account:    m.Account,
		Index:      m.RecordIndex,
		Amount:     m.Amount,
		PeriodDays: m.PeriodDays,
		State:      domain.DepositState(m.State),
		Withdrawn:  m.Withdrawn,
	}
	if m.CreatedAt != nil {
		record.CreatedAt = *m.CreatedAt
	}
	if m.LockUntil != nil {
		record.LockUntil = *m.LockUntil
	}
	return record
}

func toOutboxModel(record ports.OutboxRecord) (outboxModel, error) {
	raw, err := json.Marshal(record.Envelope)
	if err != nil {
		return outboxModel{}, err
	}
	return outboxModel{
		RecordID:   record.RecordID,
		EventClass: record.EventClass,
		Envelope:   raw,
		CreatedAt:  record.CreatedAt,
		SentAt:     record.SentAt,
	}, nil
}

func fromOutboxModel(m outboxModel) (ports.OutboxRecord, error) {
	var envelope contracts.EventEnvelope
	if err := json.Unmarshal(m.Envelope, &envelope); err != nil {
		return ports.OutboxRecord{}, err
	}
	return ports.OutboxRecord{
		RecordID:   m.RecordID,
		EventClass: m.EventClass,
		Envelope:   envelope,
		CreatedAt:  m.CreatedAt,
		SentAt:     m.SentAt,
	}, nil
}

func fromTimedRoleModel(m timedRoleModel) domain.TimedRole {
	return domain.TimedRole{
		Account:    m.Account,
		Active:     m.Active,
		LastActive: m.LastActive,
		Expiry:     m.Expiry,
	}
}

func toTimedRoleModel(role domain.TimedRole) timedRoleModel {
	return timedRoleModel{
		Account:    role.Account,
		Active:     role.Active,
		LastActive: role.LastActive,
		Expiry:     role.Expiry,
	}
}
