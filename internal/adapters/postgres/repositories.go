package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tymchak1/flow-roles/internal/domain"
	"github.com/tymchak1/flow-roles/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repositories struct {
	Tx        *TxRunner
	Deposits  *DepositRepository
	Totals    *TotalsRepository
	Roles     *RoleRepository
	Registry  *RegistryRepository
	Ownership *OwnershipRepository
	Outbox    *OutboxRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tx:        NewTxRunner(db),
		Deposits:  &DepositRepository{db: db},
		Totals:    &TotalsRepository{db: db},
		Roles:     &RoleRepository{db: db},
		Registry:  &RegistryRepository{db: db},
		Ownership: &OwnershipRepository{db: db},
		Outbox:    &OutboxRepository{db: db},
	}
}

type DepositRepository struct {
	db *gorm.DB
}

func (r *DepositRepository) Append(ctx context.Context, record domain.DepositRecord) error {
	return dbFrom(ctx, r.db).Create(toDepositModel(record)).Error
}

func (r *DepositRepository) Get(ctx context.Context, account string, index int) (domain.DepositRecord, error) {
	var m depositModel
	err := dbFrom(ctx, r.db).
		Where("account = ? AND record_index = ?", account, index).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DepositRecord{}, domain.ErrInvalidIndex
	}
	if err != nil {
		return domain.DepositRecord{}, err
	}
	return fromDepositModel(m), nil
}

func (r *DepositRepository) Update(ctx context.Context, record domain.DepositRecord) error {
	m := toDepositModel(record)
	result := dbFrom(ctx, r.db).
		Model(&depositModel{}).
		Where("account = ? AND record_index = ?", record.Account, record.Index).
		Select("amount", "period_days", "created_at", "lock_until", "state", "withdrawn").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInvalidIndex
	}
	return nil
}

func (r *DepositRepository) ListByAccount(ctx context.Context, account string) ([]domain.DepositRecord, error) {
	var models []depositModel
	err := dbFrom(ctx, r.db).
		Where("account = ?", account).
		Order("record_index ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	records := make([]domain.DepositRecord, 0, len(models))
	for _, m := range models {
		records = append(records, fromDepositModel(m))
	}
	return records, nil
}

type TotalsRepository struct {
	db *gorm.DB
}

func (r *TotalsRepository) AccountTotals(ctx context.Context, account string) (domain.AccountTotals, error) {
	var m accountTotalsModel
	err := dbFrom(ctx, r.db).Where("account = ?", account).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.AccountTotals{Account: account, LifetimeDeposited: decimal.Zero}, nil
	}
	if err != nil {
		return domain.AccountTotals{}, err
	}
	return domain.AccountTotals{
		Account:           m.Account,
		DepositCount:      m.DepositCount,
		LifetimeDeposited: m.LifetimeDeposited,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func (r *TotalsRepository) SaveAccountTotals(ctx context.Context, totals domain.AccountTotals) error {
	m := accountTotalsModel{
		Account:           totals.Account,
		DepositCount:      totals.DepositCount,
		LifetimeDeposited: totals.LifetimeDeposited,
		UpdatedAt:         totals.UpdatedAt,
	}
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"deposit_count", "lifetime_deposited", "updated_at"}),
	}).Create(&m).Error
}

func (r *TotalsRepository) TotalLocked(ctx context.Context) (decimal.Decimal, error) {
	var m vaultAggregateModel
	err := dbFrom(ctx, r.db).Where("id = 1").Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return m.TotalLocked, nil
}

func (r *TotalsRepository) AddTotalLocked(ctx context.Context, delta decimal.Decimal) error {
	return dbFrom(ctx, r.db).Exec(
		`UPDATE vault_aggregates SET total_locked = total_locked + ?, updated_at = now() WHERE id = 1`,
		delta,
	).Error
}

type RoleRepository struct {
	db *gorm.DB
}

func (r *RoleRepository) Grants(ctx context.Context, account string) ([]domain.RoleTag, error) {
	var models []roleGrantModel
	err := dbFrom(ctx, r.db).
		Where("account = ?", account).
		Order("granted_at ASC, role ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	tags := make([]domain.RoleTag, 0, len(models))
	for _, m := range models {
		tags = append(tags, domain.RoleTag(m.Role))
	}
	return tags, nil
}

func (r *RoleRepository) HasGrant(ctx context.Context, account string, tag domain.RoleTag) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&roleGrantModel{}).
		Where("account = ? AND role = ?", account, string(tag)).
		Count(&count).Error
	return count > 0, err
}

func (r *RoleRepository) AddGrant(ctx context.Context, account string, tag domain.RoleTag, at time.Time) error {
	m := roleGrantModel{Account: account, Role: string(tag), GrantedAt: at}
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error
}

func (r *RoleRepository) RemoveGrant(ctx context.Context, account string, tag domain.RoleTag) error {
	return dbFrom(ctx, r.db).
		Where("account = ? AND role = ?", account, string(tag)).
		Delete(&roleGrantModel{}).Error
}

func (r *RoleRepository) TimedRole(ctx context.Context, account string) (domain.TimedRole, bool, error) {
	var m timedRoleModel
	err := dbFrom(ctx, r.db).Where("account = ?", account).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TimedRole{}, false, nil
	}
	if err != nil {
		return domain.TimedRole{}, false, err
	}
	return fromTimedRoleModel(m), true, nil
}

func (r *RoleRepository) SaveTimedRole(ctx context.Context, role domain.TimedRole) error {
	m := toTimedRoleModel(role)
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"active", "last_active", "expiry"}),
	}).Create(&m).Error
}

type RegistryRepository struct {
	db *gorm.DB
}

func (r *RegistryRepository) Members(ctx context.Context) ([]string, error) {
	var models []registryMemberModel
	err := dbFrom(ctx, r.db).Order("position ASC").Find(&models).Error
	if err != nil {
		return nil, err
	}
	members := make([]string, 0, len(models))
	for _, m := range models {
		members = append(members, m.Account)
	}
	return members, nil
}

func (r *RegistryRepository) IsMember(ctx context.Context, account string) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&registryMemberModel{}).
		Where("account = ?", account).
		Count(&count).Error
	return count > 0, err
}

func (r *RegistryRepository) Add(ctx context.Context, account string, at time.Time) error {
	m := registryMemberModel{Account: account, AddedAt: at}
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error
}

type OwnershipRepository struct {
	db *gorm.DB
}

func (r *OwnershipRepository) Owner(ctx context.Context) (string, error) {
	var m ownershipModel
	err := dbFrom(ctx, r.db).Where("id = 1").Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.OwnerSubject, nil
}

func (r *OwnershipRepository) SetOwner(ctx context.Context, subject string, at time.Time) error {
	m := ownershipModel{ID: 1, OwnerSubject: subject, UpdatedAt: at}
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_subject", "updated_at"}),
	}).Create(&m).Error
}

type OutboxRepository struct {
	db *gorm.DB
}

func (r *OutboxRepository) Enqueue(ctx context.Context, record ports.OutboxRecord) error {
	m, err := toOutboxModel(record)
	if err != nil {
		return err
	}
	return dbFrom(ctx, r.db).Create(&m).Error
}

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	var models []outboxModel
	q := dbFrom(ctx, r.db).Where("sent_at IS NULL").Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]ports.OutboxRecord, 0, len(models))
	for _, m := range models {
		record, err := fromOutboxModel(m)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, recordID string, at time.Time) error {
	return dbFrom(ctx, r.db).
		Model(&outboxModel{}).
		Where("record_id = ?", recordID).
		Update("sent_at", at).Error
}
