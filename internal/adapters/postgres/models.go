package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type depositModel struct {
	Account     string          `gorm:"column:account;primaryKey"`
	RecordIndex int             `gorm:"column:record_index;primaryKey"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(30,10)"`
	PeriodDays  int             `gorm:"column:period_days"`
	CreatedAt   *time.Time      `gorm:"column:created_at"`
	LockUntil   *time.Time      `gorm:"column:lock_until"`
	State       string          `gorm:"column:state"`
	Withdrawn   bool            `gorm:"column:withdrawn"`
}

func (depositModel) TableName() string { return "deposits" }

type accountTotalsModel struct {
	Account           string          `gorm:"column:account;primaryKey"`
	DepositCount      int64           `gorm:"column:deposit_count"`
	LifetimeDeposited decimal.Decimal `gorm:"column:lifetime_deposited;type:numeric(30,10)"`
	UpdatedAt         time.Time       `gorm:"column:updated_at"`
}

func (accountTotalsModel) TableName() string { return "account_totals" }

// vaultAggregateModel is the single-row conserved aggregate.
type vaultAggregateModel struct {
	ID          int             `gorm:"column:id;primaryKey"`
	TotalLocked decimal.Decimal `gorm:"column:total_locked;type:numeric(30,10)"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (vaultAggregateModel) TableName() string { return "vault_aggregates" }

type roleGrantModel struct {
	Account   string    `gorm:"column:account;primaryKey"`
	Role      string    `gorm:"column:role;primaryKey"`
	GrantedAt time.Time `gorm:"column:granted_at"`
}

func (roleGrantModel) TableName() string { return "role_grants" }

type timedRoleModel struct {
	Account    string    `gorm:"column:account;primaryKey"`
	Active     bool      `gorm:"column:active"`
	LastActive time.Time `gorm:"column:last_active"`
	Expiry     time.Time `gorm:"column:expiry"`
}

func (timedRoleModel) TableName() string { return "timed_roles" }

type registryMemberModel struct {
	Position int64     `gorm:"column:position;primaryKey;autoIncrement"`
	Account  string    `gorm:"column:account;uniqueIndex"`
	AddedAt  time.Time `gorm:"column:added_at"`
}

func (registryMemberModel) TableName() string { return "temp_role_registry" }

type ownershipModel struct {
	ID           int       `gorm:"column:id;primaryKey"`
	OwnerSubject string    `gorm:"column:owner_subject"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (ownershipModel) TableName() string { return "vault_ownership" }

type outboxModel struct {
	RecordID   string     `gorm:"column:record_id;primaryKey"`
	EventClass string     `gorm:"column:event_class"`
	Envelope   []byte     `gorm:"column:envelope;type:jsonb"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	SentAt     *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "event_outbox" }
