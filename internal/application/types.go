package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tymchak1/flow-roles/internal/domain"
	"github.com/tymchak1/flow-roles/internal/ports"
)

type Config struct {
	ServiceName          string
	IdempotencyTTL       time.Duration
	OutboxFlushBatchSize int
	SweepBatchSize       int
	TriggerRegistryID    string
}

type Actor struct {
	SubjectID      string
	Role           string
	RequestID      string
	IdempotencyKey string
}

type DepositInput struct {
	Amount         decimal.Decimal
	LockPeriodDays int
}

type WithdrawReceipt struct {
	Account     string          `json:"account"`
	Index       int             `json:"index"`
	Amount      decimal.Decimal `json:"amount"`
	WithdrawnAt time.Time       `json:"withdrawn_at"`
}

type AccountSummary struct {
	Account           string
	DepositCount      int64
	LifetimeDeposited decimal.Decimal
	ActiveDeposited   decimal.Decimal
	Roles             []domain.RoleTag
}

type ProbeResult struct {
	WorkNeeded bool
	Candidates []string
}

type Service struct {
	cfg Config

	tx        ports.TxRunner
	deposits  ports.DepositRepository
	totals    ports.TotalsRepository
	roles     ports.RoleRepository
	registry  ports.RegistryRepository
	ownership ports.OwnershipRepository

	idempotency ports.IdempotencyRepository
	outbox      ports.OutboxRepository

	funds        ports.FundsMover
	domainEvents ports.DomainPublisher

	nowFn func() time.Time
}

type Dependencies struct {
	Config       Config
	Tx           ports.TxRunner
	Deposits     ports.DepositRepository
	Totals       ports.TotalsRepository
	Roles        ports.RoleRepository
	Registry     ports.RegistryRepository
	Ownership    ports.OwnershipRepository
	Idempotency  ports.IdempotencyRepository
	Outbox       ports.OutboxRepository
	Funds        ports.FundsMover
	DomainEvents ports.DomainPublisher
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "flow-roles-vault"
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 7 * 24 * time.Hour
	}
	if cfg.OutboxFlushBatchSize <= 0 {
		cfg.OutboxFlushBatchSize = 100
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 100
	}
	return &Service{
		cfg:          cfg,
		tx:           deps.Tx,
		deposits:     deps.Deposits,
		totals:       deps.Totals,
		roles:        deps.Roles,
		registry:     deps.Registry,
		ownership:    deps.Ownership,
		idempotency:  deps.Idempotency,
		outbox:       deps.Outbox,
		funds:        deps.Funds,
		domainEvents: deps.DomainEvents,
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service time source. Tests drive lock expiry and
// role lapse through this.
func (s *Service) WithClock(nowFn func() time.Time) *Service {
	if nowFn != nil {
		s.nowFn = nowFn
	}
	return s
}
