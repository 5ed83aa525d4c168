package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tymchak1/flow-roles/internal/domain"
)

// Deposit locks funds for one of the three canonical periods, appends a new
// record to the caller's deposit sequence and runs role evaluation for the
// deposit. The whole call commits or rolls back as one unit.
func (s *Service) Deposit(ctx context.Context, actor Actor, input DepositInput) (domain.DepositRecord, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return domain.DepositRecord{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(actor.IdempotencyKey) == "" {
		return domain.DepositRecord{}, domain.ErrIdempotencyRequired
	}
	if !input.Amount.IsPositive() {
		return domain.DepositRecord{}, domain.ErrZeroAmount
	}
	lockFor, err := domain.LockDuration(input.LockPeriodDays)
	if err != nil {
		return domain.DepositRecord{}, err
	}

	requestHash := hashPayload(struct {
		Account string
		Input   DepositInput
	}{actor.SubjectID, input})
	if cached, ok, err := getIdempotent[domain.DepositRecord](ctx, s, actor.IdempotencyKey, requestHash); err != nil {
		return domain.DepositRecord{}, err
	} else if ok {
		return cached, nil
	}
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return domain.DepositRecord{}, err
	}

	account := actor.SubjectID
	var record domain.DepositRecord
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		now := s.nowFn()
		totals, err := s.totals.AccountTotals(ctx, account)
		if err != nil {
			return err
		}
		record = domain.DepositRecord{
			Account:    account,
			Index:      int(totals.DepositCount),
			Amount:     input.Amount,
			PeriodDays: input.LockPeriodDays,
			CreatedAt:  now,
			LockUntil:  now.Add(lockFor),
			State:      domain.DepositStateLocked,
		}
		if err := s.deposits.Append(ctx, record); err != nil {
			return err
		}
		totals.Account = account
		totals.DepositCount++
		totals.LifetimeDeposited = totals.LifetimeDeposited.Add(input.Amount)
		totals.UpdatedAt = now
		if err := s.totals.SaveAccountTotals(ctx, totals); err != nil {
			return err
		}
		if err := s.totals.AddTotalLocked(ctx, input.Amount); err != nil {
			return err
		}
		if err := s.enqueueDepositCreated(ctx, record); err != nil {
			return err
		}
		if err := s.evaluateDeposit(ctx, account, input.Amount, input.LockPeriodDays, totals.DepositCount, now); err != nil {
			return err
		}
		return s.refreshActivity(ctx, account, now)
	})
	if err != nil {
		return domain.DepositRecord{}, err
	}

	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 201, record)
	return record, nil
}

// Withdraw releases one expired deposit back to its account. The ledger
// mutation and the outbox events land before the external transfer, so the
// surrounding transaction is what makes the call all-or-nothing: a transfer
// failure unwinds the record, the totals and the events.
func (s *Service) Withdraw(ctx context.Context, actor Actor, index int) (WithdrawReceipt, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return WithdrawReceipt{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(actor.IdempotencyKey) == "" {
		return WithdrawReceipt{}, domain.ErrIdempotencyRequired
	}
	if index < 0 {
		return WithdrawReceipt{}, domain.ErrInvalidIndex
	}

	requestHash := hashPayload(struct {
		Account string
		Index   int
	}{actor.SubjectID, index})
	if cached, ok, err := getIdempotent[WithdrawReceipt](ctx, s, actor.IdempotencyKey, requestHash); err != nil {
		return WithdrawReceipt{}, err
	} else if ok {
		return cached, nil
	}
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil {
		return WithdrawReceipt{}, err
	}

	account := actor.SubjectID
	var receipt WithdrawReceipt
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		now := s.nowFn()
		record, err := s.deposits.Get(ctx, account, index)
		if err != nil {
			return err
		}
		if record.Withdrawn {
			return domain.ErrAlreadyWithdrawn
		}
		record.AdvanceState(now)
		if record.State == domain.DepositStateLocked {
			return domain.ErrLockNotExpired
		}
		amount := record.Amount
		record.MarkWithdrawn()
		if err := s.deposits.Update(ctx, record); err != nil {
			return err
		}
		if err := s.totals.AddTotalLocked(ctx, amount.Neg()); err != nil {
			return err
		}
		if err := s.enqueueDepositWithdrawn(ctx, account, index, amount, now); err != nil {
			return err
		}
		if err := s.refreshActivity(ctx, account, now); err != nil {
			return err
		}
		reference := fmt.Sprintf("withdraw:%s:%d", account, index)
		if err := s.funds.Transfer(ctx, account, amount, reference); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
		}
		receipt = WithdrawReceipt{Account: account, Index: index, Amount: amount, WithdrawnAt: now}
		return nil
	})
	if err != nil {
		return WithdrawReceipt{}, err
	}

	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, receipt)
	return receipt, nil
}

func (s *Service) TotalLocked(ctx context.Context, actor Actor) (decimal.Decimal, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return decimal.Zero, domain.ErrUnauthorized
	}
	return s.totals.TotalLocked(ctx)
}

func (s *Service) ListDeposits(ctx context.Context, actor Actor, account string) ([]domain.DepositRecord, error) {
	account, err := s.resolveAccount(actor, account)
	if err != nil {
		return nil, err
	}
	return s.deposits.ListByAccount(ctx, account)
}

func (s *Service) GetDeposit(ctx context.Context, actor Actor, account string, index int) (domain.DepositRecord, error) {
	account, err := s.resolveAccount(actor, account)
	if err != nil {
		return domain.DepositRecord{}, err
	}
	if index < 0 {
		return domain.DepositRecord{}, domain.ErrInvalidIndex
	}
	return s.deposits.Get(ctx, account, index)
}

func (s *Service) AccountSummary(ctx context.Context, actor Actor, account string) (AccountSummary, error) {
	account, err := s.resolveAccount(actor, account)
	if err != nil {
		return AccountSummary{}, err
	}
	totals, err := s.totals.AccountTotals(ctx, account)
	if err != nil {
		return AccountSummary{}, err
	}
	records, err := s.deposits.ListByAccount(ctx, account)
	if err != nil {
		return AccountSummary{}, err
	}
	active := decimal.Zero
	for _, r := range records {
		if !r.Withdrawn && r.State == domain.DepositStateLocked {
			active = active.Add(r.Amount)
		}
	}
	grants, err := s.roles.Grants(ctx, account)
	if err != nil {
		return AccountSummary{}, err
	}
	return AccountSummary{
		Account:           account,
		DepositCount:      totals.DepositCount,
		LifetimeDeposited: totals.LifetimeDeposited,
		ActiveDeposited:   active,
		Roles:             grants,
	}, nil
}

// resolveAccount lets an account read itself; admin and finance roles may
// name any account.
func (s *Service) resolveAccount(actor Actor, account string) (string, error) {
	if strings.TrimSpace(actor.SubjectID) == "" {
		return "", domain.ErrUnauthorized
	}
	account = strings.TrimSpace(account)
	if account == "" || account == actor.SubjectID {
		return actor.SubjectID, nil
	}
	if actor.Role != "admin" && actor.Role != "finance" {
		return "", domain.ErrForbidden
	}
	return account, nil
}

func getIdempotent[T any](ctx context.Context, s *Service, key, requestHash string) (T, bool, error) {
	var zero T
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return zero, false, nil
	}
	rec, err := s.idempotency.Get(ctx, key, s.nowFn())
	if err != nil || rec == nil {
		return zero, false, err
	}
	if rec.RequestHash != requestHash {
		return zero, false, domain.ErrIdempotencyConflict
	}
	if len(rec.ResponseBody) == 0 {
		return zero, false, nil
	}
	var out T
	if err := json.Unmarshal(rec.ResponseBody, &out); err != nil {
		return zero, false, nil
	}
	return out, true, nil
}

func (s *Service) reserveIdempotency(ctx context.Context, key, requestHash string) error {
	if s.idempotency == nil {
		return nil
	}
	err := s.idempotency.Reserve(ctx, key, requestHash, s.nowFn().Add(s.cfg.IdempotencyTTL))
	if err == domain.ErrConflict {
		return domain.ErrIdempotencyConflict
	}
	return err
}

func (s *Service) completeIdempotencyJSON(ctx context.Context, key string, code int, payload any) error {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	b, _ := json.Marshal(payload)
	return s.idempotency.Complete(ctx, key, code, b, s.nowFn())
}

func hashPayload(value any) string {
	blob, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}
