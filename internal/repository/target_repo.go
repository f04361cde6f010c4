package repository

import (
	"context"
	"time"

	"salesops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TargetFilter narrows daily-target list queries.
type TargetFilter struct {
	ASMID  *uuid.UUID
	From   *time.Time
	To     *time.Time
	Search string
}

// TargetRepository defines data access for DailyTarget rows.
type TargetRepository interface {
	Create(ctx context.Context, target *model.DailyTarget) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.DailyTarget, error)
	ExistsForASMOnDate(ctx context.Context, asmID uuid.UUID, date time.Time) (bool, error)
	ListByZM(ctx context.Context, zmProfileID uuid.UUID, filter TargetFilter) ([]model.DailyTarget, error)
	ListByASM(ctx context.Context, asmAccountID uuid.UUID) ([]model.DailyTarget, error)
	ListRecentByASM(ctx context.Context, asmAccountID uuid.UUID, n int) ([]model.DailyTarget, error)
	ListByZMDateRange(ctx context.Context, zmProfileID uuid.UUID, from, to time.Time) ([]model.DailyTarget, error)
	Update(ctx context.Context, target *model.DailyTarget) error
}

type targetRepository struct {
	db *gorm.DB
}

func NewTargetRepository(db *gorm.DB) TargetRepository {
	return &targetRepository{db: db}
}

func (r *targetRepository) Create(ctx context.Context, target *model.DailyTarget) error {
	return GetDB(ctx, r.db).Create(target).Error
}

func (r *targetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DailyTarget, error) {
	var target model.DailyTarget
	if err := GetDB(ctx, r.db).
		Preload("ASM").Preload("ASM.States").Preload("ASM.Districts").Preload("ASM.Offices").
		Preload("ZonalManager").
		First(&target, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *targetRepository) ExistsForASMOnDate(ctx context.Context, asmID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.DailyTarget{}).
		Where("asm_id = ? AND date = ?", asmID, date).
		Count(&count).Error
	return count > 0, err
}

func (r *targetRepository) ListByZM(ctx context.Context, zmProfileID uuid.UUID, filter TargetFilter) ([]model.DailyTarget, error) {
	q := GetDB(ctx, r.db).
		Joins("JOIN accounts ON accounts.id = daily_targets.asm_id").
		Where("daily_targets.zonal_manager_id = ?", zmProfileID)

	if filter.ASMID != nil {
		q = q.Where("daily_targets.asm_id = ?", *filter.ASMID)
	}
	if filter.From != nil {
		q = q.Where("daily_targets.date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("daily_targets.date <= ?", *filter.To)
	}
	if filter.Search != "" {
		// LOWER on both sides keeps the match case-insensitive on postgres
		// and sqlite alike.
		pattern := "%" + filter.Search + "%"
		q = q.Where("LOWER(accounts.full_name) LIKE LOWER(?) OR LOWER(accounts.username) LIKE LOWER(?) OR LOWER(accounts.email) LIKE LOWER(?)",
			pattern, pattern, pattern)
	}

	var targets []model.DailyTarget
	if err := q.Preload("ASM").Order("daily_targets.date DESC").Find(&targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *targetRepository) ListByASM(ctx context.Context, asmAccountID uuid.UUID) ([]model.DailyTarget, error) {
	var targets []model.DailyTarget
	if err := GetDB(ctx, r.db).
		Where("asm_id = ?", asmAccountID).
		Order("date DESC").
		Find(&targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *targetRepository) ListRecentByASM(ctx context.Context, asmAccountID uuid.UUID, n int) ([]model.DailyTarget, error) {
	var targets []model.DailyTarget
	if err := GetDB(ctx, r.db).
		Where("asm_id = ?", asmAccountID).
		Order("date DESC").
		Limit(n).
		Find(&targets).Error; err != nil {
		return nil, err
	}
	// chronological order for chart series
	for i, j := 0, len(targets)-1; i < j; i, j = i+1, j-1 {
		targets[i], targets[j] = targets[j], targets[i]
	}
	return targets, nil
}

func (r *targetRepository) ListByZMDateRange(ctx context.Context, zmProfileID uuid.UUID, from, to time.Time) ([]model.DailyTarget, error) {
	var targets []model.DailyTarget
	if err := GetDB(ctx, r.db).
		Where("zonal_manager_id = ? AND date >= ? AND date <= ?", zmProfileID, from, to).
		Order("date").
		Find(&targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *targetRepository) Update(ctx context.Context, target *model.DailyTarget) error {
	return GetDB(ctx, r.db).Save(target).Error
}
