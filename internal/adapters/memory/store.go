package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tymchak1/flow-roles/internal/domain"
	"github.com/tymchak1/flow-roles/internal/ports"
)

type txKey struct{}

// Store backs every repository port with process-local state behind one
// mutex. InTx snapshots the state and restores it when the wrapped function
// fails, which is what gives withdraw its all-or-nothing semantics without a
// database.
type Store struct {
	mu sync.RWMutex

	deposits      map[string][]domain.DepositRecord
	accountTotals map[string]domain.AccountTotals
	totalLocked   decimal.Decimal

	grants     map[string][]domain.RoleTag
	timedRoles map[string]domain.TimedRole

	registry    []string
	registrySet map[string]struct{}

	owner string

	outbox      map[string]ports.OutboxRecord
	outboxOrder []string

	idempotency map[string]ports.IdempotencyRecord
}

func NewStore() *Store {
	return &Store{
		deposits:      make(map[string][]domain.DepositRecord),
		accountTotals: make(map[string]domain.AccountTotals),
		totalLocked:   decimal.Zero,
		grants:        make(map[string][]domain.RoleTag),
		timedRoles:    make(map[string]domain.TimedRole),
		registrySet:   make(map[string]struct{}),
		outbox:        make(map[string]ports.OutboxRecord),
		idempotency:   make(map[string]ports.IdempotencyRecord),
	}
}

// InTx serializes the mutation against every other operation on the store.
// Repository calls made from fn observe the uncommitted state; an error
// restores the pre-call snapshot.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		s.restoreLocked(snap)
		return err
	}
	return nil
}

func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

type snapshot struct {
	deposits      map[string][]domain.DepositRecord
	accountTotals map[string]domain.AccountTotals
	totalLocked   decimal.Decimal
	grants        map[string][]domain.RoleTag
	timedRoles    map[string]domain.TimedRole
	registry      []string
	registrySet   map[string]struct{}
	owner         string
	outbox        map[string]ports.OutboxRecord
	outboxOrder   []string
}

func (s *Store) snapshotLocked() snapshot {
	snap := snapshot{
		deposits:      make(map[string][]domain.DepositRecord, len(s.deposits)),
		accountTotals: make(map[string]domain.AccountTotals, len(s.accountTotals)),
		totalLocked:   s.totalLocked,
		grants:        make(map[string][]domain.RoleTag, len(s.grants)),
		timedRoles:    make(map[string]domain.TimedRole, len(s.timedRoles)),
		registry:      append([]string(nil), s.registry...),
		registrySet:   make(map[string]struct{}, len(s.registrySet)),
		owner:         s.owner,
		outbox:        make(map[string]ports.OutboxRecord, len(s.outbox)),
		outboxOrder:   append([]string(nil), s.outboxOrder...),
	}
	for k, v := range s.deposits {
		snap.deposits[k] = append([]domain.DepositRecord(nil), v...)
	}
	for k, v := range s.accountTotals {
		snap.accountTotals[k] = v
	}
	for k, v := range s.grants {
		snap.grants[k] = append([]domain.RoleTag(nil), v...)
	}
	for k, v := range s.timedRoles {
		snap.timedRoles[k] = v
	}
	for k := range s.registrySet {
		snap.registrySet[k] = struct{}{}
	}
	for k, v := range s.outbox {
		snap.outbox[k] = v
	}
	return snap
}

func (s *Store) restoreLocked(snap snapshot) {
	s.deposits = snap.deposits
	s.accountTotals = snap.accountTotals
	s.totalLocked = snap.totalLocked
	s.grants = snap.grants
	s.timedRoles = snap.timedRoles
	s.registry = snap.registry
	s.registrySet = snap.registrySet
	s.owner = snap.owner
	s.outbox = snap.outbox
	s.outboxOrder = snap.outboxOrder
}

// --- DepositRepository ---

func (s *Store) Append(ctx context.Context, record domain.DepositRecord) error {
	defer s.lock(ctx)()
	records := s.deposits[record.Account]
	if record.Index != len(records) {
		return domain.ErrConflict
	}
	s.deposits[record.Account] = append(records, record)
	return nil
}

func (s *Store) Get(ctx context.Context, account string, index int) (domain.DepositRecord, error) {
	defer s.rlock(ctx)()
	records := s.deposits[account]
	if index < 0 || index >= len(records) {
		return domain.DepositRecord{}, domain.ErrInvalidIndex
	}
	return records[index], nil
}

func (s *Store) Update(ctx context.Context, record domain.DepositRecord) error {
	defer s.lock(ctx)()
	records := s.deposits[record.Account]
	if record.Index < 0 || record.Index >= len(records) {
		return domain.ErrInvalidIndex
	}
	records[record.Index] = record
	return nil
}

func (s *Store) ListByAccount(ctx context.Context, account string) ([]domain.DepositRecord, error) {
	defer s.rlock(ctx)()
	return append([]domain.DepositRecord(nil), s.deposits[account]...), nil
}

// --- TotalsRepository ---

func (s *Store) AccountTotals(ctx context.Context, account string) (domain.AccountTotals, error) {
	defer s.rlock(ctx)()
	totals, ok := s.accountTotals[account]
	if !ok {
		return domain.AccountTotals{Account: account, LifetimeDeposited: decimal.Zero}, nil
	}
	return totals, nil
}

func (s *Store) SaveAccountTotals(ctx context.Context, totals domain.AccountTotals) error {
	defer s.lock(ctx)()
	s.accountTotals[totals.Account] = totals
	return nil
}

func (s *Store) TotalLocked(ctx context.Context) (decimal.Decimal, error) {
	defer s.rlock(ctx)()
	return s.totalLocked, nil
}

func (s *Store) AddTotalLocked(ctx context.Context, delta decimal.Decimal) error {
	defer s.lock(ctx)()
	s.totalLocked = s.totalLocked.Add(delta)
	return nil
}

// --- RoleRepository ---

func (s *Store) Grants(ctx context.Context, account string) ([]domain.RoleTag, error) {
	defer s.rlock(ctx)()
	return append([]domain.RoleTag(nil), s.grants[account]...), nil
}

func (s *Store) HasGrant(ctx context.Context, account string, tag domain.RoleTag) (bool, error) {
	defer s.rlock(ctx)()
	return s.hasGrantLocked(account, tag), nil
}

func (s *Store) hasGrantLocked(account string, tag domain.RoleTag) bool {
	for _, have := range s.grants[account] {
		if have == tag {
			return true
		}
	}
	return false
}

func (s *Store) AddGrant(ctx context.Context, account string, tag domain.RoleTag, _ time.Time) error {
	defer s.lock(ctx)()
	if s.hasGrantLocked(account, tag) {
		return nil
	}
	s.grants[account] = append(s.grants[account], tag)
	return nil
}

func (s *Store) RemoveGrant(ctx context.Context, account string, tag domain.RoleTag) error {
	defer s.lock(ctx)()
	have := s.grants[account]
	for i, t := range have {
		if t == tag {
			s.grants[account] = append(have[:i:i], have[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) TimedRole(ctx context.Context, account string) (domain.TimedRole, bool, error) {
	defer s.rlock(ctx)()
	role, ok := s.timedRoles[account]
	return role, ok, nil
}

func (s *Store) SaveTimedRole(ctx context.Context, role domain.TimedRole) error {
	defer s.lock(ctx)()
	s.timedRoles[role.Account] = role
	return nil
}

// --- RegistryRepository ---

func (s *Store) Members(ctx context.Context) ([]string, error) {
	defer s.rlock(ctx)()
	return append([]string(nil), s.registry...), nil
}

func (s *Store) IsMember(ctx context.Context, account string) (bool, error) {
	defer s.rlock(ctx)()
	_, ok := s.registrySet[account]
	return ok, nil
}

func (s *Store) Add(ctx context.Context, account string, _ time.Time) error {
	defer s.lock(ctx)()
	if _, ok := s.registrySet[account]; ok {
		return nil
	}
	s.registrySet[account] = struct{}{}
	s.registry = append(s.registry, account)
	return nil
}

// --- OwnershipRepository ---

func (s *Store) Owner(ctx context.Context) (string, error) {
	defer s.rlock(ctx)()
	return s.owner, nil
}

func (s *Store) SetOwner(ctx context.Context, subject string, _ time.Time) error {
	defer s.lock(ctx)()
	s.owner = subject
	return nil
}

// --- OutboxRepository ---

func (s *Store) Enqueue(ctx context.Context, record ports.OutboxRecord) error {
	defer s.lock(ctx)()
	if _, ok := s.outbox[record.RecordID]; !ok {
		s.outboxOrder = append(s.outboxOrder, record.RecordID)
	}
	s.outbox[record.RecordID] = record
	return nil
}

func (s *Store) ListPending(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	defer s.rlock(ctx)()
	out := make([]ports.OutboxRecord, 0, limit)
	for _, id := range s.outboxOrder {
		record, ok := s.outbox[id]
		if !ok || record.SentAt != nil {
			continue
		}
		out = append(out, record)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkSent(ctx context.Context, recordID string, at time.Time) error {
	defer s.lock(ctx)()
	record, ok := s.outbox[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	record.SentAt = &at
	s.outbox[recordID] = record
	return nil
}

// --- IdempotencyRepository ---

// IdempotencyStore is a named view over the store; the deposit repository
// already claims the Get method name on Store itself.
type IdempotencyStore struct {
	store *Store
}

func (s *Store) Idempotency() *IdempotencyStore {
	return &IdempotencyStore{store: s}
}

func (i *IdempotencyStore) Get(ctx context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	s := i.store
	defer s.rlock(ctx)()
	record, ok := s.idempotency[key]
	if !ok || now.After(record.ExpiresAt) {
		return nil, nil
	}
	out := record
	return &out, nil
}

func (i *IdempotencyStore) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	s := i.store
	defer s.lock(ctx)()
	if existing, ok := s.idempotency[key]; ok {
		if existing.RequestHash != requestHash {
			return domain.ErrConflict
		}
		return nil
	}
	s.idempotency[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, ExpiresAt: expiresAt}
	return nil
}

func (i *IdempotencyStore) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	s := i.store
	defer s.lock(ctx)()
	record, ok := s.idempotency[key]
	if !ok {
		return domain.ErrNotFound
	}
	record.ResponseCode = responseCode
	record.ResponseBody = responseBody
	s.idempotency[key] = record
	return nil
}
