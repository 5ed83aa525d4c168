package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tymchak1/flow-roles/internal/contracts"
	"github.com/tymchak1/flow-roles/internal/domain"
)

// TxRunner wraps a function in the store's atomic boundary. Every public
// vault operation runs inside exactly one InTx call: either all of its
// mutations (records, totals, registry, outbox) commit, or none do.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DepositRepository interface {
	Append(ctx context.Context, record domain.DepositRecord) error
	Get(ctx context.Context, account string, index int) (domain.DepositRecord, error)
	Update(ctx context.Context, record domain.DepositRecord) error
	ListByAccount(ctx context.Context, account string) ([]domain.DepositRecord, error)
}

type TotalsRepository interface {
	AccountTotals(ctx context.Context, account string) (domain.AccountTotals, error)
	SaveAccountTotals(ctx context.Context, totals domain.AccountTotals) error
	TotalLocked(ctx context.Context) (decimal.Decimal, error)
	AddTotalLocked(ctx context.Context, delta decimal.Decimal) error
}

type RoleRepository interface {
	Grants(ctx context.Context, account string) ([]domain.RoleTag, error)
	HasGrant(ctx context.Context, account string, tag domain.RoleTag) (bool, error)
	AddGrant(ctx context.Context, account string, tag domain.RoleTag, at time.Time) error
	RemoveGrant(ctx context.Context, account string, tag domain.RoleTag) error
	TimedRole(ctx context.Context, account string) (domain.TimedRole, bool, error)
	SaveTimedRole(ctx context.Context, role domain.TimedRole) error
}

// RegistryRepository is the ordered sequence of accounts that have ever held
// the temporary role. Add is idempotent: an account appears at most once no
// matter how many times it re-qualifies.
type RegistryRepository interface {
	Members(ctx context.Context) ([]string, error)
	IsMember(ctx context.Context, account string) (bool, error)
	Add(ctx context.Context, account string, at time.Time) error
}

type OwnershipRepository interface {
	Owner(ctx context.Context) (string, error)
	SetOwner(ctx context.Context, subject string, at time.Time) error
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
}

type OutboxRecord struct {
	RecordID   string
	EventClass string
	Envelope   contracts.EventEnvelope
	CreatedAt  time.Time
	SentAt     *time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, record OutboxRecord) error
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, recordID string, at time.Time) error
}
