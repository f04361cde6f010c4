package repository

import (
	"context"

	"salesops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for data access of Account entities
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	List(ctx context.Context, role, search string, page, limit int) ([]model.Account, int64, error)
	SearchByRole(ctx context.Context, role, nameFragment string, activeOnly bool) ([]model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	ReplaceGeography(ctx context.Context, account *model.Account, states []model.State, districts []model.District, offices []model.Office) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a new instance of AccountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return GetDB(ctx, r.db).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := GetDB(ctx, r.db).
		Preload("States").Preload("Districts").Preload("Offices").
		First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := GetDB(ctx, r.db).First(&account, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	if err := GetDB(ctx, r.db).First(&account, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, role, search string, page, limit int) ([]model.Account, int64, error) {
	var accounts []model.Account
	var total int64

	q := GetDB(ctx, r.db).Model(&model.Account{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("LOWER(full_name) LIKE LOWER(?) OR LOWER(username) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)",
			pattern, pattern, pattern)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := q.Order("full_name, username").Offset(offset).Limit(limit).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// SearchByRole powers the lookup endpoints consumed by form auto-suggest.
func (r *accountRepository) SearchByRole(ctx context.Context, role, nameFragment string, activeOnly bool) ([]model.Account, error) {
	var accounts []model.Account
	q := GetDB(ctx, r.db).Where("role = ?", role)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if nameFragment != "" {
		q = q.Where("LOWER(full_name) LIKE LOWER(?)", "%"+nameFragment+"%")
	}
	if err := q.Order("full_name, username").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	return GetDB(ctx, r.db).Save(account).Error
}

// ReplaceGeography swaps the account's state/district/office assignments.
func (r *accountRepository) ReplaceGeography(ctx context.Context, account *model.Account, states []model.State, districts []model.District, offices []model.Office) error {
	db := GetDB(ctx, r.db)
	if err := db.Model(account).Association("States").Replace(states); err != nil {
		return err
	}
	if err := db.Model(account).Association("Districts").Replace(districts); err != nil {
		return err
	}
	return db.Model(account).Association("Offices").Replace(offices)
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Account{}).Error
}
