package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	EventClass       string          `json:"event_class,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type DepositCreatedPayload struct {
	Account    string `json:"account"`
	Index      int    `json:"index"`
	Amount     string `json:"amount"`
	PeriodDays int    `json:"period_days"`
	LockUntil  string `json:"lock_until"`
}

type DepositWithdrawnPayload struct {
	Account     string `json:"account"`
	Index       int    `json:"index"`
	Amount      string `json:"amount"`
	WithdrawnAt string `json:"withdrawn_at"`
}

type RoleGrantedPayload struct {
	Account   string `json:"account"`
	Role      string `json:"role"`
	Permanent bool   `json:"permanent"`
	Expiry    string `json:"expiry,omitempty"`
	GrantedAt string `json:"granted_at"`
}

type RoleRevokedPayload struct {
	Account    string `json:"account"`
	Role       string `json:"role"`
	LastActive string `json:"last_active"`
	RevokedAt  string `json:"revoked_at"`
	SweptBy    string `json:"swept_by,omitempty"`
}
